package extract

import (
	"encoding/json"
	"strings"

	xerrors "Okto-Agent/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// validate 是模式门共用的校验器实例。
var validate = validator.New(validator.WithRequiredStructEnabled())

// TransferDetails 是转账抽取结果的目标模式。
type TransferDetails struct {
	Network          string          `json:"network" validate:"required"`
	ReceivingAddress string          `json:"receivingAddress" validate:"required"`
	TransferAmount   decimal.Decimal `json:"transferAmount"`
	AssetID          string          `json:"assetId" validate:"required"`
}

// SwapDetails 是兑换抽取结果的目标模式。Slippage 为百分比，缺省为 1。
type SwapDetails struct {
	Network   string           `json:"network" validate:"required"`
	FromToken string           `json:"fromToken" validate:"required"`
	ToToken   string           `json:"toToken" validate:"required"`
	Amount    decimal.Decimal  `json:"amount"`
	Slippage  *decimal.Decimal `json:"slippage,omitempty"`
}

// DecodeTransfer 将抽取服务返回的 JSON 解码为转账要素并做模式校验。
// 模式校验是独立于文本前置校验的第二道门，任何违例都以
// SCHEMA_VALIDATION 报告。
func DecodeTransfer(raw json.RawMessage) (*TransferDetails, error) {
	var details TransferDetails
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeSchemaValidation, err, "转账要素不是合法 JSON")
	}
	if err := validate.Struct(&details); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeSchemaValidation, err, "转账要素缺少必填字段")
	}
	if details.TransferAmount.Sign() <= 0 {
		return nil, xerrors.New(xerrors.CodeSchemaValidation, "转账数量必须大于零")
	}
	details.Network = strings.ToUpper(strings.TrimSpace(details.Network))
	details.AssetID = strings.ToUpper(strings.TrimSpace(details.AssetID))
	details.ReceivingAddress = strings.TrimSpace(details.ReceivingAddress)
	return &details, nil
}

// one 是 Slippage 的缺省值。
var one = decimal.NewFromInt(1)

// hundred 是 Slippage 的上界。
var hundred = decimal.NewFromInt(100)

// DecodeSwap 将抽取服务返回的 JSON 解码为兑换要素并做模式校验。
// 同币种兑换与越界滑点一律拒绝。
func DecodeSwap(raw json.RawMessage) (*SwapDetails, error) {
	var details SwapDetails
	if err := json.Unmarshal(raw, &details); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeSchemaValidation, err, "兑换要素不是合法 JSON")
	}
	if err := validate.Struct(&details); err != nil {
		return nil, xerrors.Wrap(xerrors.CodeSchemaValidation, err, "兑换要素缺少必填字段")
	}
	if details.Amount.Sign() <= 0 {
		return nil, xerrors.New(xerrors.CodeSchemaValidation, "兑换数量必须大于零")
	}
	if details.Slippage == nil {
		slippage := one
		details.Slippage = &slippage
	}
	if details.Slippage.Sign() <= 0 || details.Slippage.GreaterThan(hundred) {
		return nil, xerrors.New(xerrors.CodeSchemaValidation, "滑点必须位于 (0, 100] 区间")
	}
	details.Network = strings.ToUpper(strings.TrimSpace(details.Network))
	details.FromToken = strings.ToUpper(strings.TrimSpace(details.FromToken))
	details.ToToken = strings.ToUpper(strings.TrimSpace(details.ToToken))
	if details.FromToken == details.ToToken {
		return nil, xerrors.New(xerrors.CodeSchemaValidation, "兑换的两端不能是同一种资产")
	}
	return &details, nil
}
