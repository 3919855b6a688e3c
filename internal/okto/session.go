package okto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	xerrors "Okto-Agent/internal/errors"
	"Okto-Agent/pkg/logger"
)

// Session 是与供应商交互的唯一入口。除登录外的所有调用都要求此前的
// 异步认证已经成功，否则以供应商错误返回。
type Session struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger

	mu        sync.RWMutex
	authToken string
}

// AuthResult 描述一次异步认证的结果。
type AuthResult struct {
	UserID string `json:"user_id"`
	Token  string `json:"auth_token"`
}

// AuthCallback 在异步认证完成后被调用，result 与 err 恰有一个非零值。
type AuthCallback func(result *AuthResult, err error)

// NewSession 构造供应商会话。API Key 缺失或环境层级非法时返回配置错误，
// 这是构造期的致命错误。
func NewSession(cfg Config) (*Session, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &Session{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.Named("okto"),
	}, nil
}

// BuildType 返回会话所处的环境层级。
func (s *Session) BuildType() BuildType {
	return s.cfg.BuildType
}

// Authenticate 以 fire-and-forget 方式交换身份令牌。结果通过回调异步
// 上报；失败只会留下日志，不会阻止会话对象继续存在，后续调用在认证
// 成功前都会失败。
func (s *Session) Authenticate(ctx context.Context, idToken string, onResult AuthCallback) {
	go func() {
		result, err := s.login(ctx, idToken)
		if err != nil {
			s.log.Error("Okto 认证失败", slog.Any("error", err))
		} else {
			s.log.Info("Okto 认证成功", slog.String("user_id", result.UserID))
		}
		if onResult != nil {
			onResult(result, err)
		}
	}()
}

func (s *Session) login(ctx context.Context, idToken string) (*AuthResult, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, xerrors.New(xerrors.CodeConfiguration, "未配置身份令牌")
	}

	payload := map[string]string{"id_token": idToken}
	var decoded struct {
		Data AuthResult `json:"data"`
	}
	if err := s.roundTrip(ctx, http.MethodPost, "/api/v2/authenticate", payload, &decoded, false); err != nil {
		return nil, err
	}
	if decoded.Data.Token == "" {
		return nil, xerrors.New(xerrors.CodeVendorFailure, "认证响应缺少会话令牌")
	}

	s.mu.Lock()
	s.authToken = decoded.Data.Token
	s.mu.Unlock()
	return &decoded.Data, nil
}

// Authenticated 报告会话当前是否持有有效令牌。
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authToken != ""
}

// TransferTokens 提交转账意图。供应商立即返回受理凭证，结算异步完成，
// 终态需要之后通过 OrderHistory 观察。
func (s *Session) TransferTokens(ctx context.Context, payload TransferPayload) (*Order, error) {
	var decoded struct {
		Data Order `json:"data"`
	}
	if err := s.roundTrip(ctx, http.MethodPost, "/api/v1/transfer/tokens/execute", payload, &decoded, true); err != nil {
		return nil, err
	}
	if decoded.Data.OrderID == "" {
		return nil, xerrors.New(xerrors.CodeVendorFailure, "转账响应缺少订单号")
	}
	return &decoded.Data, nil
}

// GetPortfolio 查询会话身份的全部持仓。
func (s *Session) GetPortfolio(ctx context.Context) ([]PortfolioEntry, error) {
	var decoded struct {
		Data struct {
			Tokens []PortfolioEntry `json:"tokens"`
		} `json:"data"`
	}
	if err := s.roundTrip(ctx, http.MethodGet, "/api/v1/portfolio", nil, &decoded, true); err != nil {
		return nil, err
	}
	return decoded.Data.Tokens, nil
}

// GetWallets 列出会话身份在各条链上的钱包。
func (s *Session) GetWallets(ctx context.Context) ([]WalletRecord, error) {
	var decoded struct {
		Data struct {
			Wallets []WalletRecord `json:"wallets"`
		} `json:"data"`
	}
	if err := s.roundTrip(ctx, http.MethodGet, "/api/v1/wallet", nil, &decoded, true); err != nil {
		return nil, err
	}
	return decoded.Data.Wallets, nil
}

// OrderHistory 查询已提交的订单，filter 可按订单号收窄范围。
func (s *Session) OrderHistory(ctx context.Context, filter OrderFilter) ([]OrderRecord, error) {
	endpoint := "/api/v1/orders"
	if filter.OrderID != "" {
		endpoint += "?order_id=" + url.QueryEscape(filter.OrderID)
	}
	var decoded struct {
		Data struct {
			Jobs []OrderRecord `json:"jobs"`
		} `json:"data"`
	}
	if err := s.roundTrip(ctx, http.MethodGet, endpoint, nil, &decoded, true); err != nil {
		return nil, err
	}
	return decoded.Data.Jobs, nil
}

// ErrSwapUnsupported 表示供应商尚未公开兑换询价与执行的调用契约。
// 在契约公布之前，这两个操作以供应商错误的形式拒绝，而不是臆造
// 接口形状或返回伪造的订单。
var ErrSwapUnsupported = xerrors.New(xerrors.CodeVendorFailure, "供应商尚未提供兑换接口契约", xerrors.WithAlert(false))

// GetQuote 获取兑换报价。执行兑换前必须先取得报价。
func (s *Session) GetQuote(ctx context.Context, req QuoteRequest) (*Quote, error) {
	return nil, ErrSwapUnsupported
}

// ExecuteSwap 按报价执行兑换。
func (s *Session) ExecuteSwap(ctx context.Context, quote Quote) (*Order, error) {
	return nil, ErrSwapUnsupported
}

// roundTrip 完成一次供应商调用：编码请求、附加凭证、解码响应。所有
// 调用都是单次往返，不做内部重试。
func (s *Session) roundTrip(ctx context.Context, method, endpoint string, payload, out any, withAuth bool) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return xerrors.Wrap(xerrors.CodeVendorFailure, err, "序列化请求失败")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.cfg.BaseURL+endpoint, body)
	if err != nil {
		return xerrors.Wrap(xerrors.CodeVendorFailure, err, "构建请求失败")
	}
	req.Header.Set("Content-Type", "application/json")
	if withAuth {
		s.mu.RLock()
		token := s.authToken
		s.mu.RUnlock()
		if token == "" {
			return xerrors.New(xerrors.CodeVendorFailure, "会话尚未完成认证")
		}
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Set("x-api-key", s.cfg.APIKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return xerrors.Wrap(xerrors.CodeVendorFailure, err, "请求供应商失败")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return s.decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return xerrors.Wrap(xerrors.CodeVendorFailure, err, "解析供应商响应失败")
	}
	return nil
}

func (s *Session) decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	var decoded struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	message := strings.TrimSpace(string(data))
	if err := json.Unmarshal(data, &decoded); err == nil && decoded.Error.Message != "" {
		message = decoded.Error.Message
	}
	return xerrors.New(xerrors.CodeVendorFailure,
		fmt.Sprintf("供应商返回状态 %d: %s", resp.StatusCode, message),
		xerrors.WithMetadata("status", fmt.Sprintf("%d", resp.StatusCode)))
}
