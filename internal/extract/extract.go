package extract

import (
	"context"
	"encoding/json"
)

// Request 描述一次结构化抽取调用。Prompt 为已渲染完成的模板，包含
// 最近对话与登记表中允许的网络、资产列表。
type Request struct {
	Capability string
	Prompt     string
}

// Client 定义结构化抽取服务的统一接口。返回的 JSON 是否符合目标
// 模式由调用方通过本包的模式门二次校验。
type Client interface {
	Extract(ctx context.Context, req Request) (json.RawMessage, error)
}
