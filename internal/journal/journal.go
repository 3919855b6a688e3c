// Package journal 记录智能体派发过的每一次能力调用，用于排障与审计。
// 它只保存本系统自己的行为记录；钱包与订单状态始终由供应商持有，
// 不在本地落库。
package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Entry 是一次能力调用的落库结构。
type Entry struct {
	ID         string `json:"id"`
	Capability string `json:"capability"`
	Input      string `json:"input"`
	Success    bool   `json:"success"`
	Response   string `json:"response"`
	OrderID    string `json:"order_id,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

// Store 抽象调用记录的持久化接口。
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// memoryCap 限制内存中保留的记录条数。
const memoryCap = 512

// MemoryStore 使用本地 JSON 行文件保存记录，适合开发与单机部署。
type MemoryStore struct {
	mu       sync.RWMutex
	dataFile string
	entries  []Entry
}

// NewMemoryStore 创建基于文件的记录仓库并恢复历史内容。
func NewMemoryStore(dataDir string) (*MemoryStore, error) {
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建数据目录失败: %w", err)
	}
	store := &MemoryStore{dataFile: filepath.Join(dataDir, "actions.log")}
	if err := store.loadFromDisk(); err != nil {
		return nil, err
	}
	return store, nil
}

// Append 以追加写的方式记录一次调用。
func (m *MemoryStore) Append(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, err := os.OpenFile(m.dataFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("打开调用日志失败: %w", err)
	}
	defer file.Close()

	encoded, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("序列化调用记录失败: %w", err)
	}
	if _, err := file.Write(append(encoded, '\n')); err != nil {
		return fmt.Errorf("写入调用日志失败: %w", err)
	}

	m.entries = append([]Entry{entry}, m.entries...)
	if len(m.entries) > memoryCap {
		m.entries = m.entries[:memoryCap]
	}
	return nil
}

// ListRecent 返回最近的调用记录，按时间倒序排列。
func (m *MemoryStore) ListRecent(_ context.Context, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 || limit > len(m.entries) {
		limit = len(m.entries)
	}
	results := make([]Entry, limit)
	copy(results, m.entries[:limit])
	return results, nil
}

// Close 实现 Store 接口。
func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) loadFromDisk() error {
	file, err := os.OpenFile(m.dataFile, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("读取调用日志失败: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var restored []Entry
	for scanner.Scan() {
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		restored = append([]Entry{entry}, restored...)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("解析调用日志失败: %w", err)
	}
	if len(restored) > memoryCap {
		restored = restored[:memoryCap]
	}
	m.entries = restored
	return nil
}

var _ Store = (*MemoryStore)(nil)
