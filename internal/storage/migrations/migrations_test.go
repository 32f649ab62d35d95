package migrations

import (
	"strings"
	"testing"
)

func TestLoad_AllBackends(t *testing.T) {
	tests := []struct {
		dir  string
		want []string
	}{
		{"postgres", []string{"001_graph.sql", "002_trade_flows.sql"}},
		{"clickhouse", []string{"001_trade_flows.sql", "002_node_states.sql"}},
		{"sqlite", []string{"001_graph.sql"}},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			fsys := PostgresFS
			switch tt.dir {
			case "clickhouse":
				fsys = ClickhouseFS
			case "sqlite":
				fsys = SQLiteFS
			}

			files, err := load(fsys, tt.dir)
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if len(files) != len(tt.want) {
				t.Fatalf("expected %d files, got %d", len(tt.want), len(files))
			}
			for i, f := range files {
				if f.name != tt.want[i] {
					t.Errorf("file %d: expected %s, got %s", i, tt.want[i], f.name)
				}
				if !strings.Contains(f.sql, "CREATE TABLE") {
					t.Errorf("%s: no CREATE TABLE statement", f.name)
				}
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	sql := `-- header comment
CREATE TABLE a (x Int32);

CREATE TABLE b (y String)
;
`
	stmts := splitStatements(sql)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if stmts[0] != "CREATE TABLE a (x Int32)" {
		t.Errorf("unexpected first statement %q", stmts[0])
	}
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	if err := validateNoSemicolonInStrings("SELECT 'it''s fine'"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := validateNoSemicolonInStrings("SELECT 'a;b'"); err == nil {
		t.Error("expected error for semicolon in literal")
	}
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://user:pw@localhost:9000/trade")
	if err != nil || db != "trade" {
		t.Errorf("expected trade, got %q (%v)", db, err)
	}
	if _, err := databaseFromDSN("clickhouse://localhost:9000"); err == nil {
		t.Error("expected error for missing database")
	}
}
