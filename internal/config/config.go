package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Config 描述守护进程在启动阶段需要加载的核心配置。
type Config struct {
	Server    ServerConfig    `json:"server"`
	Okto      OktoConfig      `json:"okto"`
	Extractor ExtractorConfig `json:"extractor"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Journal   JournalConfig   `json:"journal"`
	Registry  RegistryConfig  `json:"registry"`
	Logging   LoggingConfig   `json:"logging"`
}

// ServerConfig 控制 API 服务的监听地址等参数。
type ServerConfig struct {
	Address string `json:"address"`
}

// OktoConfig 描述供应商会话所需的凭证与环境。
type OktoConfig struct {
	BuildType       string `json:"build_type"`
	APIKey          string `json:"api_key"`
	GoogleIDToken   string `json:"google_id_token"`
	TimeoutSeconds  int    `json:"timeout_seconds"`
	PollSeconds     int    `json:"poll_seconds"`
	PollMaxAttempts int    `json:"poll_max_attempts"`
}

// Timeout 返回供应商调用的超时时间。
func (c OktoConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PollInterval 返回订单轮询间隔。
func (c OktoConfig) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

// ExtractorConfig 配置结构化抽取服务的调用方式。
type ExtractorConfig struct {
	Provider       string `json:"provider"`
	APIKey         string `json:"api_key"`
	BaseURL        string `json:"base_url"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Timeout 返回抽取调用的超时时间。
func (c ExtractorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RateLimitConfig 配置调用配额。Driver 支持 memory 与 redis。
type RateLimitConfig struct {
	Driver        string `json:"driver"`
	Limit         int    `json:"limit"`
	WindowSeconds int    `json:"window_seconds"`
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
}

// Window 返回配额窗口时长。
func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

// JournalConfig 配置调用记录仓库。Driver 支持 memory 与 mysql。
type JournalConfig struct {
	Driver  string `json:"driver"`
	DSN     string `json:"dsn"`
	DataDir string `json:"data_dir"`
}

// RegistryConfig 指向网络与资产登记表的覆盖文件，留空使用内置缺省表。
type RegistryConfig struct {
	Path string `json:"path"`
}

// LoggingConfig 控制结构化日志输出。
type LoggingConfig struct {
	Level      string   `json:"level"`
	Format     string   `json:"format"`
	Outputs    []string `json:"outputs"`
	AuditPath  string   `json:"audit_path"`
	MaxSizeMB  int      `json:"max_size_mb"`
	MaxBackups int      `json:"max_backups"`
}

// 环境变量覆盖项，凭证优先从环境读取。
const (
	EnvAPIKey        = "OKTO_API_KEY"
	EnvBuildType     = "OKTO_BUILD_TYPE"
	EnvGoogleIDToken = "OKTO_GOOGLE_ID_TOKEN"
	EnvExtractorKey  = "OPENAI_API_KEY"
)

// Load 负责解析指定路径的 JSON 配置文件。
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("配置文件路径为空")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开配置文件失败: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	cfg.applyEnvironment()
	cfg.applyDefaults(filepath.Dir(path))

	return &cfg, nil
}

// applyEnvironment 用环境变量覆盖文件中的凭证与环境选择。
func (c *Config) applyEnvironment() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Okto.APIKey = v
	}
	if v := os.Getenv(EnvBuildType); v != "" {
		c.Okto.BuildType = v
	}
	if v := os.Getenv(EnvGoogleIDToken); v != "" {
		c.Okto.GoogleIDToken = v
	}
	if v := os.Getenv(EnvExtractorKey); v != "" && c.Extractor.APIKey == "" {
		c.Extractor.APIKey = v
	}
}

// applyDefaults 在用户未填写部分字段时设置合理的默认值。
func (c *Config) applyDefaults(baseDir string) {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}

	if c.Okto.BuildType == "" {
		c.Okto.BuildType = "sandbox"
	}
	if c.Okto.TimeoutSeconds <= 0 {
		c.Okto.TimeoutSeconds = 15
	}
	if c.Okto.PollSeconds <= 0 {
		c.Okto.PollSeconds = 5
	}
	if c.Okto.PollMaxAttempts <= 0 {
		c.Okto.PollMaxAttempts = 12
	}

	if c.Extractor.Provider == "" {
		c.Extractor.Provider = "openai"
	}
	if c.Extractor.TimeoutSeconds <= 0 {
		c.Extractor.TimeoutSeconds = 60
	}

	if c.RateLimit.Driver == "" {
		c.RateLimit.Driver = "memory"
	}
	if c.RateLimit.Limit <= 0 {
		c.RateLimit.Limit = 60
	}
	if c.RateLimit.WindowSeconds <= 0 {
		c.RateLimit.WindowSeconds = 60
	}

	if c.Journal.Driver == "" {
		c.Journal.Driver = "memory"
	}
	if c.Journal.DataDir == "" {
		c.Journal.DataDir = filepath.Join(baseDir, "data")
	} else if !filepath.IsAbs(c.Journal.DataDir) {
		c.Journal.DataDir = filepath.Join(baseDir, c.Journal.DataDir)
	}

	if c.Registry.Path != "" && !filepath.IsAbs(c.Registry.Path) {
		c.Registry.Path = filepath.Join(baseDir, c.Registry.Path)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if len(c.Logging.Outputs) == 0 {
		c.Logging.Outputs = []string{"stdout"}
	}
}
