package okto

import (
	"strings"
	"time"

	xerrors "Okto-Agent/internal/errors"
)

// BuildType 选择接入的环境层级，进而决定访问的基础地址。
type BuildType string

const (
	BuildProduction BuildType = "production"
	BuildStaging    BuildType = "staging"
	BuildSandbox    BuildType = "sandbox"
)

// baseURLs 为三个环境层级各自固定的基础地址。
var baseURLs = map[BuildType]string{
	BuildProduction: "https://apigw.okto.tech",
	BuildStaging:    "https://3p-bff.oktostage.com",
	BuildSandbox:    "https://sandbox-api.okto.tech",
}

const (
	// defaultHTTPTimeout 约束单次供应商调用的时长。
	defaultHTTPTimeout = 15 * time.Second
	// orderPollInterval 是查询订单终态的轮询间隔。
	orderPollInterval = 5 * time.Second
	// orderPollMaxAttempts 限制订单轮询的最大次数（12 * 5s = 60s）。
	orderPollMaxAttempts = 12
)

// Config 描述构造会话所需的凭证与环境信息。
type Config struct {
	APIKey    string
	BuildType BuildType
	// BaseURL 仅供测试覆盖环境地址，留空时按 BuildType 选择。
	BaseURL string
	Timeout time.Duration
	// PollInterval 与 PollMaxAttempts 控制订单终态轮询，零值使用默认。
	PollInterval    time.Duration
	PollMaxAttempts int
}

// normalize 校验配置并填充默认值。API Key 缺失属于致命的配置错误。
func (c *Config) normalize() error {
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.APIKey == "" {
		return xerrors.New(xerrors.CodeConfiguration, "未配置 Okto API Key")
	}
	if c.BuildType == "" {
		c.BuildType = BuildSandbox
	}
	if c.BaseURL == "" {
		base, ok := baseURLs[c.BuildType]
		if !ok {
			return xerrors.New(xerrors.CodeConfiguration, "不支持的环境层级 "+string(c.BuildType))
		}
		c.BaseURL = base
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = defaultHTTPTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = orderPollInterval
	}
	if c.PollMaxAttempts <= 0 {
		c.PollMaxAttempts = orderPollMaxAttempts
	}
	return nil
}

// ParseBuildType 将配置文件中的字符串解析为环境层级。
func ParseBuildType(raw string) (BuildType, error) {
	switch BuildType(strings.ToLower(strings.TrimSpace(raw))) {
	case BuildProduction:
		return BuildProduction, nil
	case BuildStaging:
		return BuildStaging, nil
	case BuildSandbox, "":
		return BuildSandbox, nil
	default:
		return "", xerrors.New(xerrors.CodeConfiguration, "不支持的环境层级 "+raw)
	}
}
