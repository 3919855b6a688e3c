package action

import (
	"context"
	"log/slog"

	xerrors "Okto-Agent/internal/errors"
	"Okto-Agent/internal/okto"
	"Okto-Agent/pkg/logger"
)

// NewPortfolioAction 构建持仓查询能力。
func NewPortfolioAction(deps Deps) *Action {
	log := logger.Named("action.portfolio")
	return &Action{
		Name:        "OKTO_GET_PORTFOLIO",
		Description: "Get Okto portfolio",
		Examples: []string{
			"get okto portfolio",
			"show me my okto portfolio",
			"fetch my okto portfolio",
		},
		Similes:  []string{"OKTO_GET_PORTFOLIO", "GET_PORTFOLIO", "PORTFOLIO", "FETCH_PORTFOLIO", "FETCH_OKTO_PORTFOLIO"},
		Validate: nonEmpty,
		Handler: func(ctx context.Context, msg Message) *Result {
			if !deps.Limiter.Allow() {
				return rateLimited()
			}
			entries, err := deps.Session.GetPortfolio(ctx)
			if err != nil {
				log.Error("查询持仓失败", slog.Any("error", err))
				return &Result{Success: false, Response: "okto get portfolio failed", Text: "❌ Okto Get Portfolio failed.",
					FailureCode: xerrors.CodeVendorFailure}
			}
			return &Result{
				Success:  true,
				Response: "okto get portfolio successful",
				Text:     "✅ Okto Portfolio:\n" + FormatPortfolio(entries),
			}
		},
	}
}

// NewWalletsAction 构建钱包列表能力。
func NewWalletsAction(deps Deps) *Action {
	log := logger.Named("action.wallets")
	return &Action{
		Name:        "OKTO_GET_WALLETS",
		Description: "Get Okto wallets",
		Examples: []string{
			"get okto wallets",
			"show me my okto wallets",
			"fetch my okto wallets",
		},
		Similes:  []string{"OKTO_GET_WALLETS", "GET_WALLETS", "WALLETS", "FETCH_WALLETS", "FETCH_OKTO_WALLETS"},
		Validate: nonEmpty,
		Handler: func(ctx context.Context, msg Message) *Result {
			if !deps.Limiter.Allow() {
				return rateLimited()
			}
			wallets, err := deps.Session.GetWallets(ctx)
			if err != nil {
				log.Error("查询钱包失败", slog.Any("error", err))
				return &Result{Success: false, Response: "okto get wallets failed", Text: "❌ Okto Get Wallets failed.",
					FailureCode: xerrors.CodeVendorFailure}
			}
			return &Result{
				Success:  true,
				Response: "okto get wallets successful",
				Text:     "✅ Okto Wallets:\n" + FormatWallets(wallets),
			}
		},
	}
}

// NewOrderHistoryAction 构建订单历史能力。
func NewOrderHistoryAction(deps Deps) *Action {
	log := logger.Named("action.orders")
	return &Action{
		Name:        "OKTO_GET_ORDER_HISTORY",
		Description: "Get Okto order history",
		Examples: []string{
			"get okto order history",
			"show me my okto order history",
			"fetch my okto order history",
		},
		Similes:  []string{"OKTO_GET_ORDER_HISTORY", "GET_ORDER_HISTORY", "ORDER_HISTORY", "ORDERS", "FETCH_ORDER_HISTORY", "FETCH_OKTO_ORDER_HISTORY"},
		Validate: nonEmpty,
		Handler: func(ctx context.Context, msg Message) *Result {
			if !deps.Limiter.Allow() {
				return rateLimited()
			}
			orders, err := deps.Session.OrderHistory(ctx, okto.OrderFilter{})
			if err != nil {
				log.Error("查询订单历史失败", slog.Any("error", err))
				return &Result{Success: false, Response: "okto get order history failed", Text: "❌ Okto Get Order History failed.",
					FailureCode: xerrors.CodeVendorFailure}
			}
			return &Result{
				Success:  true,
				Response: "okto get order history successful",
				Text:     "✅ Okto Order History:\n" + FormatOrderHistory(orders),
			}
		},
	}
}
