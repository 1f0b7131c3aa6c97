package database

import "testing"

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in      string
		want    Dialect
		wantErr bool
	}{
		{"", DialectSQLite, false},
		{"SQLite", DialectSQLite, false},
		{"postgresql", DialectPostgres, false},
		{"mysql", DialectMySQL, false},
		{"mssql", DialectSQLServer, false},
		{"oracle", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDialect(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDialect(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDialect(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDialect_Rebind(t *testing.T) {
	query := "SELECT id FROM runs WHERE status = ? AND project_path = ?"
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{DialectSQLite, query},
		{DialectMySQL, query},
		{DialectPostgres, "SELECT id FROM runs WHERE status = $1 AND project_path = $2"},
		{DialectSQLServer, "SELECT id FROM runs WHERE status = @p1 AND project_path = @p2"},
	}

	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			if got := tt.dialect.Rebind(query); got != tt.want {
				t.Errorf("Rebind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitStatements(t *testing.T) {
	schema := "-- header\nCREATE TABLE a (x INT);\n\n-- note\nCREATE INDEX i ON a(x);\n"
	got := splitStatements(schema)
	if len(got) != 2 {
		t.Fatalf("splitStatements() returned %d statements, want 2: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (x INT)" {
		t.Errorf("first statement = %q", got[0])
	}
	if got[1] != "CREATE INDEX i ON a(x)" {
		t.Errorf("second statement = %q", got[1])
	}
}
