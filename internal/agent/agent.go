package agent

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"Okto-Agent/internal/action"
	xerrors "Okto-Agent/internal/errors"
	"Okto-Agent/internal/journal"
	"Okto-Agent/internal/observability/alerting"
	"Okto-Agent/pkg/logger"

	"github.com/google/uuid"
)

// Request 描述一次进入派发层的消息。Capability 为空时由派发器根据
// 消息文本自行路由。
type Request struct {
	Capability string   `json:"capability,omitempty"`
	Text       string   `json:"text"`
	Recent     []string `json:"recent,omitempty"`
}

// Response 汇总派发结果与最终命中的能力名。
type Response struct {
	Capability string         `json:"capability"`
	Result     *action.Result `json:"result"`
}

// Descriptor 是对外公开的能力描述。
type Descriptor struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
	Similes     []string `json:"similes"`
}

// Agent 把对话消息派发到钱包能力，是系统的业务核心。
type Agent struct {
	actions []*action.Action
	index   map[string]*action.Action
	journal journal.Store
	alerts  alerting.Dispatcher
}

// Option 定义可选的 Agent 配置。
type Option func(*Agent)

// WithJournal 配置调用记录仓库。
func WithJournal(store journal.Store) Option {
	return func(a *Agent) {
		a.journal = store
	}
}

// WithAlerts 配置告警分发器。
func WithAlerts(dispatcher alerting.Dispatcher) Option {
	return func(a *Agent) {
		a.alerts = dispatcher
	}
}

// New 创建一个 Agent。能力按注册顺序参与路由。
func New(actions []*action.Action, opts ...Option) *Agent {
	ag := &Agent{
		actions: actions,
		index:   make(map[string]*action.Action, len(actions)),
	}
	for _, act := range actions {
		ag.index[act.Name] = act
		for _, simile := range act.Similes {
			if _, exists := ag.index[simile]; !exists {
				ag.index[simile] = act
			}
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ag)
		}
	}
	return ag
}

// Execute 解析并执行请求指定的能力。
func (a *Agent) Execute(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, xerrors.New(xerrors.CodeEmptyQuery, "消息文本不能为空")
	}

	act, err := a.resolve(req)
	if err != nil {
		return nil, err
	}

	msg := action.Message{Text: req.Text, Recent: req.Recent}
	if !act.Validate(msg) {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "消息不适用于该能力",
			xerrors.WithMetadata("capability", act.Name))
	}

	result := act.Handler(ctx, msg)
	a.record(ctx, act.Name, req.Text, result)
	return &Response{Capability: act.Name, Result: result}, nil
}

// resolve 先按能力名与别名查找，找不到时回退到逐个试探适用性。
func (a *Agent) resolve(req Request) (*action.Action, error) {
	if name := strings.ToUpper(strings.TrimSpace(req.Capability)); name != "" {
		if act, ok := a.index[name]; ok {
			return act, nil
		}
		return nil, xerrors.New(xerrors.CodeNotFound, "未注册的能力",
			xerrors.WithMetadata("capability", name))
	}

	upper := strings.ToUpper(req.Text)
	for _, act := range a.actions {
		for _, simile := range act.Similes {
			if strings.Contains(upper, strings.ReplaceAll(simile, "_", " ")) {
				return act, nil
			}
		}
	}
	msg := action.Message{Text: req.Text, Recent: req.Recent}
	for _, act := range a.actions {
		if act.Validate(msg) {
			return act, nil
		}
	}
	return nil, xerrors.New(xerrors.CodeNotFound, "没有能力适用于这条消息")
}

// record 落库，并按失败码在错误码登记表中的告警属性决定是否上报。
// 记录失败不阻断本次调用。
func (a *Agent) record(ctx context.Context, capability, input string, result *action.Result) {
	log := logger.Named("agent")
	if a.journal != nil {
		entry := journal.Entry{
			ID:         uuid.NewString(),
			Capability: capability,
			Input:      input,
			Success:    result.Success,
			Response:   result.Response,
			OrderID:    result.OrderID,
			CreatedAt:  time.Now().Unix(),
		}
		if err := a.journal.Append(ctx, entry); err != nil {
			log.Error("写入调用记录失败", slog.Any("error", err))
		}
	}

	if a.alerts == nil || result.Success || result.FailureCode == "" {
		return
	}
	attrs := xerrors.AttributesOf(result.FailureCode)
	if !attrs.Alert {
		return
	}
	event := alerting.Event{
		Code:       result.FailureCode,
		Message:    result.Response,
		Severity:   attrs.Severity,
		Capability: capability,
		OrderID:    result.OrderID,
		OccurredAt: time.Now(),
	}
	if err := a.alerts.Notify(ctx, event); err != nil {
		log.Error("发送告警失败", slog.Any("error", err))
	}
}

// Capabilities 返回全部已注册能力的描述，供 API 层对外公开。
func (a *Agent) Capabilities() []Descriptor {
	descriptors := make([]Descriptor, 0, len(a.actions))
	for _, act := range a.actions {
		descriptors = append(descriptors, Descriptor{
			Name:        act.Name,
			Description: act.Description,
			Examples:    act.Examples,
			Similes:     act.Similes,
		})
	}
	return descriptors
}

// History 获取最近的调用记录。
func (a *Agent) History(ctx context.Context, limit int) ([]journal.Entry, error) {
	if a.journal == nil {
		return nil, xerrors.New(xerrors.CodeInitializationFailure, "未配置调用记录仓库")
	}
	entries, err := a.journal.ListRecent(ctx, limit)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.CodeStorageFailure, err, "查询调用记录失败")
	}
	return entries, nil
}
