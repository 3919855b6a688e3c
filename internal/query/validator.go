// Package query 提供对话输入的粗粒度前置校验。它只判断一条消息是否
// 值得进入后续的结构化抽取流程，并不负责生成完整的请求对象。
package query

import (
	"regexp"
	"strings"

	xerrors "Okto-Agent/internal/errors"

	"github.com/shopspring/decimal"
)

// amountPattern 匹配消息中出现的第一个整数或小数。
var amountPattern = regexp.MustCompile(`\d+(\.\d+)?`)

// Seed 是通过前置校验的消息的归一化形式。
type Seed struct {
	// Text 为去除首尾空白并转为小写后的原始消息。
	Text string
	// Amount 为消息中扫描到的第一个数值，始终大于零。
	Amount decimal.Decimal
}

// Validate 对原始消息做两道检查：剔除空白后不能为空，且必须包含一个
// 大于零的数值。校验失败意味着该能力对这条消息不适用，而不是需要向
// 用户报错。
func Validate(rawText string) (Seed, error) {
	text := strings.ToLower(strings.TrimSpace(rawText))
	if text == "" {
		return Seed{}, xerrors.New(xerrors.CodeEmptyQuery, "")
	}

	match := amountPattern.FindString(text)
	if match == "" {
		return Seed{}, xerrors.New(xerrors.CodeNoAmount, "")
	}
	amount, err := decimal.NewFromString(match)
	if err != nil {
		return Seed{}, xerrors.Wrap(xerrors.CodeNoAmount, err, "解析数值失败")
	}
	if amount.Sign() <= 0 {
		return Seed{}, xerrors.New(xerrors.CodeNoAmount, "数值必须大于零")
	}

	return Seed{Text: text, Amount: amount}, nil
}
