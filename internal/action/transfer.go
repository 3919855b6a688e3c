package action

import (
	"context"
	"fmt"
	"log/slog"

	xerrors "Okto-Agent/internal/errors"
	"Okto-Agent/internal/extract"
	"Okto-Agent/internal/okto"
	"Okto-Agent/internal/query"
	"Okto-Agent/pkg/logger"
)

// NewTransferAction 构建转账能力。
func NewTransferAction(deps Deps) *Action {
	log := logger.Named("action.transfer")
	return &Action{
		Name:        "OKTO_TRANSFER",
		Description: "Perform token transfers using Okto",
		Examples: []string{
			"transfer 1 SOL to winner.sol on solana",
			"send 1 eth token to 0x1234567890 on polygon",
			"transfer 0.01 POL to 0xF638D541943213D42751F6BFa323ebe6e0fbEaA1 on Polygon amoy testnet",
		},
		Similes: []string{"TRANSFER", "TOKEN_TRANSFER", "OKTO_TRANSFER", "OKTO_SEND", "SEND_TOKEN"},
		Validate: func(msg Message) bool {
			_, err := query.Validate(msg.Text)
			return err == nil
		},
		Handler: func(ctx context.Context, msg Message) *Result {
			if _, err := query.Validate(msg.Text); err != nil {
				return &Result{Success: false, Response: "query not applicable", Text: "Please describe the transfer, including an amount.",
					FailureCode: xerrors.CodeOf(err)}
			}
			if !deps.Limiter.Allow() {
				return rateLimited()
			}

			// 第二道门：结构化抽取与模式校验。
			raw, err := deps.Extractor.Extract(ctx, extract.Request{
				Capability: "transfer",
				Prompt:     extract.RenderTransferPrompt(deps.Table, append(msg.Recent, msg.Text)),
			})
			if err != nil {
				log.Error("转账要素抽取失败", slog.Any("error", err))
				return &Result{Success: false, Response: "extraction failed", Text: "Invalid transfer details. Please check the inputs.",
					FailureCode: xerrors.CodeExtractionFailure}
			}
			details, err := extract.DecodeTransfer(raw)
			if err != nil {
				log.Warn("转账要素未通过模式校验", slog.Any("error", err))
				return &Result{Success: false, Response: "invalid transfer details", Text: "Invalid transfer details. Please check the inputs.",
					FailureCode: xerrors.CodeSchemaValidation}
			}

			// 符号到地址的解析失败与模式校验失败是两类不同的用户错误。
			tokenAddress, err := deps.Table.ResolveAssetAddress(details.Network, details.AssetID)
			if err != nil {
				log.Warn("资产符号解析失败",
					slog.String("network", details.Network),
					slog.String("asset", details.AssetID),
					slog.Any("error", err))
				return &Result{Success: false, Response: "unknown asset", Text: "Invalid token symbol. Please check the inputs.",
					FailureCode: xerrors.CodeUnknownAsset}
			}
			family, err := deps.Table.NetworkFamily(details.Network)
			if err != nil {
				return &Result{Success: false, Response: "unknown network", Text: "Invalid network. Please check the inputs.",
					FailureCode: xerrors.CodeUnknownAsset}
			}
			if !validRecipient(family, details.ReceivingAddress) {
				return &Result{Success: false, Response: "invalid recipient", Text: "Invalid recipient address. Please check the inputs.",
					FailureCode: xerrors.CodeInvalidArgument}
			}

			payload := okto.TransferPayload{
				NetworkName:      details.Network,
				TokenAddress:     tokenAddress,
				RecipientAddress: details.ReceivingAddress,
				Quantity:         details.TransferAmount.String(),
			}
			order, err := deps.Session.TransferTokens(ctx, payload)
			if err != nil {
				log.Error("转账提交失败", slog.Any("error", err))
				return &Result{Success: false, Response: "okto transfer failed", Text: "❌ Okto Transfer failed.",
					FailureCode: xerrors.CodeVendorFailure}
			}
			log.Info("转账已受理",
				slog.String("order_id", order.OrderID),
				slog.String("network", details.Network),
				slog.String("quantity", payload.Quantity))

			summary := fmt.Sprintf("Submitted transfer of %s %s to %s on %s\nOrder ID: %s",
				payload.Quantity, details.AssetID, payload.RecipientAddress, payload.NetworkName, order.OrderID)

			// 轮询订单直至终态或轮询窗口耗尽。
			wait, err := deps.Session.WaitForOrder(ctx, order.OrderID)
			if err != nil {
				if xerrors.IsCode(err, xerrors.CodeTimeout) {
					return &Result{Success: true, Response: "okto transfer submitted", OrderID: order.OrderID,
						Text: "⏳ Okto Transfer submitted, settlement still pending.\n" + summary}
				}
				log.Error("等待转账终态失败", slog.Any("error", err))
				return &Result{Success: true, Response: "okto transfer submitted", OrderID: order.OrderID,
					Text: "⏳ Okto Transfer submitted, settlement status unknown.\n" + summary}
			}
			switch {
			case wait.Pending:
				return &Result{Success: true, Response: "okto transfer pending", OrderID: order.OrderID,
					Text: "⏳ Okto Transfer submitted, settlement still pending.\n" + summary}
			case wait.Record.Status == okto.OrderStatusFailed:
				return &Result{Success: false, Response: "okto transfer failed", OrderID: order.OrderID,
					Text: "❌ Okto Transfer failed.\n" + summary, FailureCode: xerrors.CodeVendorFailure}
			default:
				text := "✅ Okto Transfer successful.\n" + summary
				if wait.Record.TransactionHash != "" {
					text += fmt.Sprintf("\nTransaction Hash: `%s`", wait.Record.TransactionHash)
				}
				return &Result{Success: true, Response: "okto transfer successful", OrderID: order.OrderID, Text: text}
			}
		},
	}
}
