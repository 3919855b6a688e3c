package okto

import (
	"context"
	"log/slog"
	"time"

	xerrors "Okto-Agent/internal/errors"
)

// OrderWait 是一次订单终态等待的结果。Pending 为真表示轮询窗口耗尽时
// 订单仍未到达终态，这是一个正常状态而非错误。
type OrderWait struct {
	Record  OrderRecord
	Pending bool
}

// WaitForOrder 按固定间隔轮询订单历史直到订单到达终态或尝试次数耗尽。
// 轮询中途的供应商错误会被记录并继续下一次尝试；只有上下文取消会让
// 等待提前终止。
func (s *Session) WaitForOrder(ctx context.Context, orderID string) (*OrderWait, error) {
	if orderID == "" {
		return nil, xerrors.New(xerrors.CodeInvalidArgument, "订单号不能为空")
	}

	wait := &OrderWait{Record: OrderRecord{OrderID: orderID, Status: OrderStatusPending}, Pending: true}
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= s.cfg.PollMaxAttempts; attempt++ {
		records, err := s.OrderHistory(ctx, OrderFilter{OrderID: orderID})
		if err != nil {
			if ctx.Err() != nil {
				return nil, xerrors.Wrap(xerrors.CodeTimeout, ctx.Err(), "等待订单终态被取消")
			}
			s.log.Warn("查询订单状态失败，继续轮询",
				slog.String("order_id", orderID),
				slog.Int("attempt", attempt),
				slog.Any("error", err))
		}
		for _, record := range records {
			if record.OrderID != orderID {
				continue
			}
			wait.Record = record
			if record.Terminal() {
				wait.Pending = false
				return wait, nil
			}
		}
		if attempt == s.cfg.PollMaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, xerrors.Wrap(xerrors.CodeTimeout, ctx.Err(), "等待订单终态被取消")
		case <-ticker.C:
		}
	}

	// 轮询窗口耗尽，订单仍在途。
	return wait, nil
}
