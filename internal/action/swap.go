package action

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"

	xerrors "Okto-Agent/internal/errors"
	"Okto-Agent/internal/extract"
	"Okto-Agent/internal/okto"
	"Okto-Agent/internal/query"
	"Okto-Agent/pkg/logger"
)

// NewSwapAction 构建兑换能力。询价与执行是两步独立的供应商调用，
// 执行前必须先取得报价。
func NewSwapAction(deps Deps) *Action {
	log := logger.Named("action.swap")
	return &Action{
		Name:        "OKTO_SWAP",
		Description: "Perform token swaps using DEX via Okto",
		Examples: []string{
			"swap 1 SOL to USDC on solana",
			"swap 10 USDC to ETH on polygon",
			"exchange 100 USDT for ETH on base",
		},
		Similes: []string{"SWAP", "TOKEN_SWAP", "OKTO_SWAP", "OKTO_BUY", "BUY_TOKEN", "EXCHANGE"},
		Validate: func(msg Message) bool {
			_, err := query.Validate(msg.Text)
			return err == nil
		},
		Handler: func(ctx context.Context, msg Message) *Result {
			if _, err := query.Validate(msg.Text); err != nil {
				return &Result{Success: false, Response: "query not applicable", Text: "Please describe the swap, including an amount.",
					FailureCode: xerrors.CodeOf(err)}
			}
			if !deps.Limiter.Allow() {
				return rateLimited()
			}

			raw, err := deps.Extractor.Extract(ctx, extract.Request{
				Capability: "swap",
				Prompt:     extract.RenderSwapPrompt(deps.Table, append(msg.Recent, msg.Text)),
			})
			if err != nil {
				log.Error("兑换要素抽取失败", slog.Any("error", err))
				return &Result{Success: false, Response: "extraction failed", Text: "Invalid swap details. Please check the inputs.",
					FailureCode: xerrors.CodeExtractionFailure}
			}
			details, err := extract.DecodeSwap(raw)
			if err != nil {
				log.Warn("兑换要素未通过模式校验", slog.Any("error", err))
				return &Result{Success: false, Response: "invalid swap details", Text: "Invalid swap details. Please check the inputs.",
					FailureCode: xerrors.CodeSchemaValidation}
			}

			fromAddress, err := deps.Table.ResolveAssetAddress(details.Network, details.FromToken)
			if err != nil {
				return &Result{Success: false, Response: "unknown asset", Text: "Invalid token symbol. Please check the inputs.",
					FailureCode: xerrors.CodeUnknownAsset}
			}
			toAddress, err := deps.Table.ResolveAssetAddress(details.Network, details.ToToken)
			if err != nil {
				return &Result{Success: false, Response: "unknown asset", Text: "Invalid token symbol. Please check the inputs.",
					FailureCode: xerrors.CodeUnknownAsset}
			}

			quote, err := deps.Session.GetQuote(ctx, okto.QuoteRequest{
				NetworkName:      details.Network,
				FromTokenAddress: fromAddress,
				ToTokenAddress:   toAddress,
				Amount:           details.Amount.String(),
				Slippage:         details.Slippage.String(),
			})
			if err != nil {
				// 合约未公布是已知的功能缺位，不作为运维故障上报。
				if stdErrors.Is(err, okto.ErrSwapUnsupported) {
					return &Result{Success: false, Response: "okto swap unavailable",
						Text: "Token swaps are not available yet. The vendor has not published the swap contract."}
				}
				log.Error("兑换询价失败", slog.Any("error", err))
				return &Result{Success: false, Response: "okto swap failed", Text: "❌ Okto Swap failed.",
					FailureCode: xerrors.CodeVendorFailure}
			}

			order, err := deps.Session.ExecuteSwap(ctx, *quote)
			if err != nil {
				log.Error("兑换执行失败", slog.Any("error", err))
				return &Result{Success: false, Response: "okto swap failed", Text: "❌ Okto Swap failed.",
					FailureCode: xerrors.CodeVendorFailure}
			}
			log.Info("兑换已受理", slog.String("order_id", order.OrderID))

			text := fmt.Sprintf("✅ Swap order submitted.\nSwapping %s %s to %s on %s\nOrder ID: %s",
				details.Amount, details.FromToken, details.ToToken, details.Network, order.OrderID)
			return &Result{Success: true, Response: "okto swap successful", OrderID: order.OrderID, Text: text}
		},
	}
}
