package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLConfig 描述 MySQL 记录仓库的连接参数。
type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// MySQLStore 把调用记录写入 MySQL，供多实例部署共享。
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore 建立连接池并执行 deploy/migrations 内嵌的迁移，保证
// 表结构存在且与发布的迁移文件一致。
func NewMySQLStore(ctx context.Context, cfg MySQLConfig) (*MySQLStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("未配置 MySQL DSN")
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("打开 MySQL 连接失败: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("连接 MySQL 失败: %w", err)
	}
	statements, err := loadMigrationStatements()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("执行迁移语句失败: %w", err)
		}
	}
	return &MySQLStore{db: db}, nil
}

// Append 写入一条调用记录。
func (s *MySQLStore) Append(ctx context.Context, entry Entry) error {
	const stmt = `INSERT INTO action_journal (id, capability, input, success, response, order_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, stmt,
		entry.ID, entry.Capability, entry.Input, entry.Success, entry.Response, entry.OrderID, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("写入调用记录失败: %w", err)
	}
	return nil
}

// ListRecent 按时间倒序返回最近的调用记录。
func (s *MySQLStore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	const stmt = `SELECT id, capability, input, success, response, order_id, created_at
FROM action_journal ORDER BY created_at DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, stmt, limit)
	if err != nil {
		return nil, fmt.Errorf("查询调用记录失败: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.Capability, &entry.Input, &entry.Success,
			&entry.Response, &entry.OrderID, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("扫描调用记录失败: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历调用记录失败: %w", err)
	}
	return entries, nil
}

// Close 释放连接池。
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

var _ Store = (*MySQLStore)(nil)
