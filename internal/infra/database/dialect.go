package database

import (
	"fmt"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"  // MySQL 驱动
	_ "github.com/lib/pq"               // PostgreSQL 驱动
	_ "github.com/microsoft/go-mssqldb" // SQL Server 驱动
	_ "modernc.org/sqlite"              // 纯 Go SQLite 驱动
)

// Dialect identifies a supported SQL database.
type Dialect string

const (
	DialectSQLite    Dialect = "sqlite"
	DialectPostgres  Dialect = "postgres"
	DialectMySQL     Dialect = "mysql"
	DialectSQLServer Dialect = "sqlserver"
)

// Dialects returns every supported dialect.
func Dialects() []Dialect {
	return []Dialect{DialectSQLite, DialectPostgres, DialectMySQL, DialectSQLServer}
}

// ParseDialect parses a dialect name. "postgresql" and "mssql" are accepted as aliases.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3", "":
		return DialectSQLite, nil
	case "postgres", "postgresql":
		return DialectPostgres, nil
	case "mysql":
		return DialectMySQL, nil
	case "sqlserver", "mssql":
		return DialectSQLServer, nil
	default:
		return "", fmt.Errorf("unsupported database dialect: %s", name)
	}
}

// Validate checks if the dialect is supported.
func (d Dialect) Validate() error {
	switch d {
	case DialectSQLite, DialectPostgres, DialectMySQL, DialectSQLServer:
		return nil
	default:
		return fmt.Errorf("unsupported database dialect: %s", d)
	}
}

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	return string(d)
}

// schemaFile returns the embedded schema file of the dialect.
func (d Dialect) schemaFile() string {
	return "schema/" + string(d) + ".sql"
}

// Rebind rewrites '?' placeholders into the dialect's native form.
// Queries must not contain '?' inside string literals.
func (d Dialect) Rebind(query string) string {
	var prefix string
	switch d {
	case DialectPostgres:
		prefix = "$"
	case DialectSQLServer:
		prefix = "@p"
	default:
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 16)
	n := 0
	for _, c := range query {
		if c != '?' {
			sb.WriteRune(c)
			continue
		}
		n++
		sb.WriteString(prefix)
		sb.WriteString(strconv.Itoa(n))
	}
	return sb.String()
}
