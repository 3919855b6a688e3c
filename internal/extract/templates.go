package extract

import (
	"fmt"
	"strings"

	"Okto-Agent/internal/registry"
)

// transferTemplate 指导模型从对话中抽取转账要素。网络与资产列表在
// 渲染时从登记表注入，保证模板始终与实际支持范围一致。
const transferTemplate = `
Extract the following details for processing a token transfer:
- **receivingAddress** (string): The address to transfer the tokens to.
- **transferAmount** (number): The amount to transfer. This can be a decimal number as well.
- **assetId** (string): The asset symbol to transfer. Allowed values are: %s
- **network** (string): The blockchain network to use. Allowed values are: %s

Only provide the details in the following JSON format:

{
    "receivingAddress": "<receiving_address>",
    "transferAmount": <amount>,
    "assetId": "<asset_id>",
    "network": "<network>"
}

Here are the recent user messages for context:
%s
`

// swapTemplate 指导模型从对话中抽取兑换要素。
const swapTemplate = `
Extract the following details for processing a token swap:
- **fromToken** (string): The asset symbol to swap from. Allowed values are: %s
- **toToken** (string): The asset symbol to swap to. Allowed values are: %s
- **amount** (number): The amount of fromToken to swap. This can be a decimal number as well.
- **slippage** (number, optional): Allowed slippage in percent, defaults to 1.
- **network** (string): The blockchain network to use. Allowed values are: %s

Only provide the details in the following JSON format:

{
    "fromToken": "<from_token>",
    "toToken": "<to_token>",
    "amount": <amount>,
    "slippage": <slippage>,
    "network": "<network>"
}

Here are the recent user messages for context:
%s
`

// RenderTransferPrompt 渲染转账抽取模板。
func RenderTransferPrompt(table *registry.Table, recentMessages []string) string {
	assets := strings.Join(table.SupportedAssets(), ", ")
	networks := strings.Join(table.SupportedNetworks(), ", ")
	return fmt.Sprintf(transferTemplate, assets, networks, joinMessages(recentMessages))
}

// RenderSwapPrompt 渲染兑换抽取模板。
func RenderSwapPrompt(table *registry.Table, recentMessages []string) string {
	assets := strings.Join(table.SupportedAssets(), ", ")
	networks := strings.Join(table.SupportedNetworks(), ", ")
	return fmt.Sprintf(swapTemplate, assets, assets, networks, joinMessages(recentMessages))
}

func joinMessages(messages []string) string {
	if len(messages) == 0 {
		return "(none)"
	}
	var builder strings.Builder
	for idx, message := range messages {
		builder.WriteString(fmt.Sprintf("[%d] %s\n", idx+1, strings.TrimSpace(message)))
	}
	return builder.String()
}
