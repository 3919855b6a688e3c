// Package ratelimit 提供出站供应商调用的固定窗口准入控制。超限是一种
// 软拒绝：调用方应当把它转化为"稍后再试"的提示，而不是硬错误。
package ratelimit

import (
	"sync"
	"time"
)

const (
	// DefaultLimit 与 DefaultWindow 对应每分钟 60 次请求。
	DefaultLimit  = 60
	DefaultWindow = time.Minute
)

// Limiter 是准入控制的统一接口。Allow 返回 false 表示当前窗口的
// 配额已经用尽。
type Limiter interface {
	Allow() bool
	Close() error
}

// FixedWindow 是进程内的固定窗口计数器。窗口到期后配额整体重置，
// 不做滑动窗口平滑。多个请求可能并行派发，因此计数器由互斥锁保护。
type FixedWindow struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	count       int
	windowStart time.Time
	now         func() time.Time
}

// NewFixedWindow 创建进程内限流器，非法参数回落到默认值。
func NewFixedWindow(limit int, window time.Duration) *FixedWindow {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &FixedWindow{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow 占用一个配额。窗口边界到达时计数整体清零。
func (l *FixedWindow) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.windowStart) >= l.window {
		l.windowStart = now
		l.count = 0
	}
	if l.count >= l.limit {
		return false
	}
	l.count++
	return true
}

// Close 实现 Limiter 接口，进程内实现无需释放资源。
func (l *FixedWindow) Close() error {
	return nil
}

var _ Limiter = (*FixedWindow)(nil)
