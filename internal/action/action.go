package action

import (
	"context"
	"strings"

	xerrors "Okto-Agent/internal/errors"
	"Okto-Agent/internal/extract"
	"Okto-Agent/internal/okto"
	"Okto-Agent/internal/ratelimit"
	"Okto-Agent/internal/registry"
)

// Message 是进入派发层的一条对话消息。Recent 为最近的上下文消息，
// 供结构化抽取模板引用。
type Message struct {
	Text   string
	Recent []string
}

// Result 汇总一次能力调用的结构化结果与给用户的文本。两者相互独立：
// Response 供宿主程序判断成败，Text 直接展示给用户。失败结果还携带
// 统一错误码，告警与审计依据错误码而非文本判断失败类别。
type Result struct {
	Success     bool         `json:"success"`
	Response    string       `json:"response"`
	Text        string       `json:"text"`
	OrderID     string       `json:"order_id,omitempty"`
	FailureCode xerrors.Code `json:"failure_code,omitempty"`
}

// Handler 执行一次能力调用。同步的供应商失败在内部转化为失败结果，
// 不会以 error 向上抛出。
type Handler func(ctx context.Context, msg Message) *Result

// Action 是向宿主运行时注册一个能力所需的全部契约。
type Action struct {
	Name        string
	Description string
	Examples    []string
	Similes     []string
	// Validate 判断能力是否适用于这条消息。返回 false 表示不提供该
	// 能力，而不是向用户报错。
	Validate func(msg Message) bool
	Handler  Handler
}

// Session 抽象供应商会话，便于在测试中替换。
type Session interface {
	TransferTokens(ctx context.Context, payload okto.TransferPayload) (*okto.Order, error)
	GetPortfolio(ctx context.Context) ([]okto.PortfolioEntry, error)
	GetWallets(ctx context.Context) ([]okto.WalletRecord, error)
	OrderHistory(ctx context.Context, filter okto.OrderFilter) ([]okto.OrderRecord, error)
	GetQuote(ctx context.Context, req okto.QuoteRequest) (*okto.Quote, error)
	ExecuteSwap(ctx context.Context, quote okto.Quote) (*okto.Order, error)
	WaitForOrder(ctx context.Context, orderID string) (*okto.OrderWait, error)
}

// Deps 汇集各能力共享的协作对象。
type Deps struct {
	Session   Session
	Extractor extract.Client
	Table     *registry.Table
	Limiter   ratelimit.Limiter
}

// rateLimited 是配额耗尽时的软拒绝结果。
func rateLimited() *Result {
	return &Result{
		Success:     false,
		Response:    "rate limit exceeded",
		Text:        "Rate limit exceeded. Please try again later.",
		FailureCode: xerrors.CodeRateLimited,
	}
}

// All 按固定顺序构建全部能力。
func All(deps Deps) []*Action {
	return []*Action{
		NewTransferAction(deps),
		NewSwapAction(deps),
		NewPortfolioAction(deps),
		NewWalletsAction(deps),
		NewOrderHistoryAction(deps),
	}
}

// nonEmpty 是只读能力共用的适用性判断。
func nonEmpty(msg Message) bool {
	return strings.TrimSpace(msg.Text) != ""
}
