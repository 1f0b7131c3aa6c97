// Package database opens the run history store and applies its schema.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// MemoryPath opens a private in-memory SQLite database.
const MemoryPath = ":memory:"

// DB is a connection pool bound to its dialect.
type DB struct {
	*sql.DB
	dialect Dialect
}

// Dialect returns the dialect of the pool.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Rebind rewrites '?' placeholders for the pool's dialect.
func (db *DB) Rebind(query string) string {
	return db.dialect.Rebind(query)
}

// Options selects the database to open.
type Options struct {
	Dialect Dialect

	// DSN is the driver connection string; for SQLite it is the database file path.
	DSN string

	// MaxOpenConns caps the pool for server dialects. Zero leaves the driver default.
	MaxOpenConns int
}

// Open 打开数据库并执行对应方言的 Schema
func Open(ctx context.Context, opts Options) (*DB, error) {
	if err := opts.Dialect.Validate(); err != nil {
		return nil, err
	}
	if opts.Dialect == DialectSQLite {
		return InitializeSQLite(ctx, opts.DSN)
	}
	if opts.DSN == "" {
		return nil, fmt.Errorf("dsn is required for %s", opts.Dialect)
	}

	sqlDB, err := sql.Open(opts.Dialect.DriverName(), opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Dialect, err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}

	db := &DB{DB: sqlDB, dialect: opts.Dialect}
	if err := db.prepare(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// InitializeSQLite 初始化 SQLite 数据库
// ctx: 上下文（支持取消）
// dbPath: 数据库文件路径（如 "./data/simdesk.db"），MemoryPath 表示内存数据库
// 返回: 数据库连接对象（单连接池）或错误
func InitializeSQLite(ctx context.Context, dbPath string) (*DB, error) {
	var dsn string
	if dbPath == MemoryPath {
		dsn = "file::memory:?_pragma=foreign_keys(1)"
	} else {
		// 1. 创建目录
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		// 2. 连接数据库（启用 WAL 和外键）
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=cache_size(64000)&_pragma=synchronous(NORMAL)", dbPath)
	}

	sqlDB, err := sql.Open(DialectSQLite.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// 3. 配置单连接池
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	db := &DB{DB: sqlDB, dialect: DialectSQLite}
	if err := db.prepare(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// prepare 执行 Schema 并验证连接
func (db *DB) prepare(ctx context.Context) error {
	// 4. 执行 Schema
	schemaBytes, err := schemaFS.ReadFile(db.dialect.schemaFile())
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	for _, stmt := range splitStatements(string(schemaBytes)) {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema: %w", err)
		}
	}

	// 5. 验证连接
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// splitStatements splits a schema file on ';' and drops empty statements and '--' comment lines.
func splitStatements(schema string) []string {
	var stmts []string
	for _, part := range strings.Split(schema, ";") {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		stmt := strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
