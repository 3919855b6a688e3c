package okto

// TransferPayload 是提交转账意图的请求体。Quantity 使用字符串传输，
// 避免浮点精度问题；TokenAddress 为空表示原生资产。
type TransferPayload struct {
	NetworkName      string `json:"network_name"`
	TokenAddress     string `json:"token_address"`
	RecipientAddress string `json:"recipient_address"`
	Quantity         string `json:"quantity"`
}

// Order 是供应商受理请求后立即返回的受理凭证。订单的终态需要之后
// 通过订单历史查询获得。
type Order struct {
	OrderID string `json:"order_id"`
}

// PortfolioEntry 描述持仓中的一项资产。Quantity 是展示用字符串，
// 本系统不对其做数值解析。
type PortfolioEntry struct {
	TokenName    string `json:"token_name"`
	NetworkName  string `json:"network_name"`
	Quantity     string `json:"quantity"`
	TokenAddress string `json:"token_address,omitempty"`
}

// WalletRecord 描述会话身份在某条链上的钱包。
type WalletRecord struct {
	NetworkName string `json:"network_name"`
	Address     string `json:"address"`
}

// 订单状态取值。
const (
	OrderStatusSuccess = "SUCCESS"
	OrderStatusFailed  = "FAILED"
	OrderStatusPending = "PENDING"
)

// OrderRecord 描述一笔已提交的订单及其当前状态。
type OrderRecord struct {
	OrderID         string `json:"order_id"`
	NetworkName     string `json:"network_name"`
	OrderType       string `json:"order_type"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
	TransactionHash string `json:"transaction_hash,omitempty"`
}

// Terminal 判断订单是否已到达终态。
func (r OrderRecord) Terminal() bool {
	return r.Status == OrderStatusSuccess || r.Status == OrderStatusFailed
}

// OrderFilter 约束订单历史查询的范围，零值表示查询全部。
type OrderFilter struct {
	OrderID string
}

// QuoteRequest 描述一次兑换询价。
type QuoteRequest struct {
	NetworkName      string `json:"network_name"`
	FromTokenAddress string `json:"from_token_address"`
	ToTokenAddress   string `json:"to_token_address"`
	Amount           string `json:"amount"`
	Slippage         string `json:"slippage"`
}

// Quote 是供应商给出的兑换报价，后续须原样提交执行。
type Quote struct {
	QuoteID          string `json:"quote_id"`
	NetworkName      string `json:"network_name"`
	FromTokenAddress string `json:"from_token_address"`
	ToTokenAddress   string `json:"to_token_address"`
	Amount           string `json:"amount"`
	ExpectedOutput   string `json:"expected_output"`
}
