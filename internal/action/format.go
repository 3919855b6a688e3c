package action

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"Okto-Agent/internal/okto"
)

// FormatPortfolio 把持仓列表渲染为可读文本。合约地址仅在存在时追加。
func FormatPortfolio(entries []okto.PortfolioEntry) string {
	if len(entries) == 0 {
		return "No tokens found in portfolio."
	}
	items := make([]string, 0, len(entries))
	for idx, entry := range entries {
		item := fmt.Sprintf("%d. %s (%s)\n   • Quantity: %s",
			idx+1, entry.TokenName, entry.NetworkName, entry.Quantity)
		if entry.TokenAddress != "" {
			item += fmt.Sprintf("\n   • Address: `%s`", entry.TokenAddress)
		}
		items = append(items, item)
	}
	return strings.Join(items, "\n\n")
}

// FormatWallets 把钱包列表渲染为可读文本。
func FormatWallets(wallets []okto.WalletRecord) string {
	if len(wallets) == 0 {
		return "No wallets found."
	}
	items := make([]string, 0, len(wallets))
	for idx, wallet := range wallets {
		items = append(items, fmt.Sprintf("%d. %s\n   • Address: `%s`",
			idx+1, wallet.NetworkName, wallet.Address))
	}
	return strings.Join(items, "\n\n")
}

// FormatOrderHistory 把订单列表按更新时间倒序渲染为可读文本。排序是
// 展示层的职责，供应商不保证返回顺序。交易哈希仅在存在时追加。
func FormatOrderHistory(orders []okto.OrderRecord) string {
	if len(orders) == 0 {
		return "No orders found in order history."
	}

	sorted := make([]okto.OrderRecord, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return laterTimestamp(sorted[i].UpdatedAt, sorted[j].UpdatedAt)
	})

	items := make([]string, 0, len(sorted))
	for idx, order := range sorted {
		item := fmt.Sprintf("%d. Order ID: %s (%s)\n   • Order Type: %s\n   • Status: %s\n   • Created At: %s\n   • Updated At: %s",
			idx+1, order.OrderID, order.NetworkName, order.OrderType, order.Status, order.CreatedAt, order.UpdatedAt)
		if order.TransactionHash != "" {
			item += fmt.Sprintf("\n   • Transaction Hash: `%s`", order.TransactionHash)
		}
		items = append(items, item)
	}
	return strings.Join(items, "\n\n")
}

// laterTimestamp 判断 a 是否晚于 b。时间戳优先按 RFC3339 解析，解析
// 失败时退化为字符串比较。
func laterTimestamp(a, b string) bool {
	ta, errA := time.Parse(time.RFC3339, a)
	tb, errB := time.Parse(time.RFC3339, b)
	if errA == nil && errB == nil {
		return ta.After(tb)
	}
	return a > b
}
