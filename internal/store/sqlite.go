package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"futures-ai/internal/config"
	"futures-ai/internal/order"
)

// Store 封装 SQLite 执行审计库。
// 核心流水线不落库，由 CLI 与 HTTP 入口在成功派发后追加记录。
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS executions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	order_type TEXT NOT NULL,
	status TEXT NOT NULL,
	price TEXT NOT NULL,
	orig_qty TEXT NOT NULL,
	executed_qty TEXT NOT NULL,
	raw_response TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_executions_symbol ON executions(symbol);
`

// NewSQLite 根据配置初始化 SQLite 存储。
func NewSQLite(cfg config.DatabaseConfig) (*Store, error) {
	dsn := cfg.Path
	if cfg.InMemory {
		dsn = ":memory:"
	} else {
		if err := ensureDir(filepath.Dir(cfg.Path)); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on", dsn))
	if err != nil {
		return nil, fmt.Errorf("打开 SQLite 数据库失败: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("设置 SQLite WAL 模式失败: %w", err)
	}

	if _, err := conn.Exec("PRAGMA synchronous=NORMAL;"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("设置 SQLite 同步级别失败: %w", err)
	}

	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("初始化执行审计表失败: %w", err)
	}

	return &Store{db: conn}, nil
}

// RecordExecution 追加一条执行审计记录，原始载荷原样保存。
func (s *Store) RecordExecution(ctx context.Context, result order.ExecutionResult) error {
	rawJSON, err := json.Marshal(result.Raw)
	if err != nil {
		return fmt.Errorf("序列化原始响应失败: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO executions
		 (order_id, symbol, side, order_type, status, price, orig_qty, executed_qty, raw_response, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.OrderID,
		result.Symbol,
		result.Side,
		result.Type,
		result.Status,
		result.Price,
		result.OrigQty,
		result.ExecutedQty,
		string(rawJSON),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("写入执行审计记录失败: %w", err)
	}

	return nil
}

// CountExecutions 返回审计记录条数。
func (s *Store) CountExecutions(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM executions").Scan(&count); err != nil {
		return 0, fmt.Errorf("统计执行审计记录失败: %w", err)
	}
	return count, nil
}

// DB 返回底层 *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close 关闭数据库连接。
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("创建目录 %q 失败: %w", path, err)
	}
	return nil
}
