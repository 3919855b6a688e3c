package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"Okto-Agent/internal/action"
	"Okto-Agent/internal/agent"
	"Okto-Agent/internal/api"
	"Okto-Agent/internal/config"
	"Okto-Agent/internal/extract"
	"Okto-Agent/internal/extract/openai"
	"Okto-Agent/internal/journal"
	"Okto-Agent/internal/observability/alerting"
	"Okto-Agent/internal/okto"
	"Okto-Agent/internal/ratelimit"
	"Okto-Agent/internal/registry"
	"Okto-Agent/pkg/logger"
)

// main 是 Okto 智能体守护进程的入口。
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("oktoagentd 运行失败: %v", err)
	}
}

func run(ctx context.Context) error {
	configPath := os.Getenv("OKTO_AGENT_CONFIG")
	if configPath == "" {
		configPath = filepath.Join("configs", "oktoagent.json")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Outputs: cfg.Logging.Outputs,
		Audit: logger.AuditConfig{
			Enabled:    cfg.Logging.AuditPath != "",
			Path:       cfg.Logging.AuditPath,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
		},
	}); err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	// 加载网络与资产登记表。
	table := registry.Default()
	if cfg.Registry.Path != "" {
		table, err = registry.Load(cfg.Registry.Path)
		if err != nil {
			return err
		}
	}

	// 建立供应商会话并触发异步认证。
	buildType, err := okto.ParseBuildType(cfg.Okto.BuildType)
	if err != nil {
		return err
	}
	session, err := okto.NewSession(okto.Config{
		APIKey:          cfg.Okto.APIKey,
		BuildType:       buildType,
		Timeout:         cfg.Okto.Timeout(),
		PollInterval:    cfg.Okto.PollInterval(),
		PollMaxAttempts: cfg.Okto.PollMaxAttempts,
	})
	if err != nil {
		return err
	}
	if cfg.Okto.GoogleIDToken != "" {
		session.Authenticate(ctx, cfg.Okto.GoogleIDToken, nil)
	}

	limiter, err := createLimiter(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = limiter.Close()
	}()

	store, err := createJournal(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	extractor, err := createExtractor(cfg)
	if err != nil {
		return err
	}

	actions := action.All(action.Deps{
		Session:   session,
		Extractor: extractor,
		Table:     table,
		Limiter:   limiter,
	})
	ag := agent.New(actions,
		agent.WithJournal(store),
		agent.WithAlerts(alerting.NewFanout(&alerting.LogNotifier{})),
	)

	server := api.NewServer(cfg.Server.Address, ag)
	if err := server.Start(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// createLimiter 按配置选择配额驱动。
func createLimiter(cfg *config.Config) (ratelimit.Limiter, error) {
	switch cfg.RateLimit.Driver {
	case "", "memory":
		return ratelimit.NewFixedWindow(cfg.RateLimit.Limit, cfg.RateLimit.Window()), nil
	case "redis":
		return ratelimit.NewRedisWindow(ratelimit.RedisConfig{
			Address:  cfg.RateLimit.RedisAddr,
			Password: cfg.RateLimit.RedisPassword,
			DB:       cfg.RateLimit.RedisDB,
			Limit:    cfg.RateLimit.Limit,
			Window:   cfg.RateLimit.Window(),
		})
	default:
		return nil, fmt.Errorf("未知的限流驱动: %s", cfg.RateLimit.Driver)
	}
}

// createJournal 按配置选择调用记录仓库。
func createJournal(ctx context.Context, cfg *config.Config) (journal.Store, error) {
	switch cfg.Journal.Driver {
	case "", "memory":
		return journal.NewMemoryStore(cfg.Journal.DataDir)
	case "mysql":
		return journal.NewMySQLStore(ctx, journal.MySQLConfig{DSN: cfg.Journal.DSN})
	default:
		return nil, fmt.Errorf("未知的记录仓库驱动: %s", cfg.Journal.Driver)
	}
}

// createExtractor 按配置选择结构化抽取客户端。
func createExtractor(cfg *config.Config) (extract.Client, error) {
	switch cfg.Extractor.Provider {
	case "", "openai":
		return openai.NewClient(openai.Config{
			APIKey:  cfg.Extractor.APIKey,
			BaseURL: cfg.Extractor.BaseURL,
			Model:   cfg.Extractor.Model,
			Timeout: cfg.Extractor.Timeout(),
		})
	default:
		return nil, fmt.Errorf("未知的抽取 provider: %s", cfg.Extractor.Provider)
	}
}
