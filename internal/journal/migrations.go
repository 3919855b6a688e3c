package journal

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"Okto-Agent/deploy/migrations"
)

var embeddedMigrations = migrations.Files

// loadMigrationStatements 按文件名顺序读出全部迁移语句。迁移语句要求
// 幂等（CREATE TABLE IF NOT EXISTS 等），每次建立连接时全量执行。
func loadMigrationStatements() ([]string, error) {
	entries, err := fs.ReadDir(embeddedMigrations, ".")
	if err != nil {
		return nil, fmt.Errorf("读取迁移目录失败: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var statements []string
	for _, name := range names {
		content, err := embeddedMigrations.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("读取迁移文件 %s 失败: %w", name, err)
		}
		for _, stmt := range strings.Split(string(content), ";") {
			trimmed := strings.TrimSpace(stmt)
			if trimmed == "" {
				continue
			}
			statements = append(statements, trimmed)
		}
	}
	if len(statements) == 0 {
		return nil, fmt.Errorf("迁移目录中没有任何 SQL 语句")
	}
	return statements, nil
}
