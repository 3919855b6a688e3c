package journal

import (
	"strings"
	"testing"
)

func TestLoadMigrationStatements(t *testing.T) {
	statements, err := loadMigrationStatements()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(statements) == 0 {
		t.Fatal("expected at least one migration statement")
	}
	if !strings.Contains(statements[0], "CREATE TABLE IF NOT EXISTS action_journal") {
		t.Fatalf("first migration must create the journal table:\n%s", statements[0])
	}
	for idx, stmt := range statements {
		if strings.TrimSpace(stmt) == "" {
			t.Fatalf("statement %d is empty", idx)
		}
		if strings.HasSuffix(stmt, ";") {
			t.Fatalf("statement %d still carries a terminator: %q", idx, stmt)
		}
	}
}
