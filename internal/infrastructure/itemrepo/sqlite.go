package itemrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ingredient-parser/internal/pkg/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// timeLayout 固定寬度，created_at 可直接以字串排序
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteRepository 以 SQLite 保存商品
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository 開啟資料庫並建立資料表
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite 同時只允許一個寫入者
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	repo := &SQLiteRepository{db: db}
	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	common.LogInfo("SQLite 商品資料庫已開啟", zap.String("path", dbPath))
	return repo, nil
}

func (r *SQLiteRepository) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS items (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        name_key TEXT NOT NULL,
        category TEXT NOT NULL DEFAULT '',
        usage_count INTEGER NOT NULL DEFAULT 0,
        created_at TEXT NOT NULL,
        updated_at TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_items_name_key ON items(name_key);
    `

	if _, err := r.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// FindByName 以不分大小寫的完全相同名稱查詢
func (r *SQLiteRepository) FindByName(ctx context.Context, name string) ([]common.Item, error) {
	query := `
        SELECT id, name, category, usage_count, created_at, updated_at
        FROM items
        WHERE name_key = ?
        ORDER BY created_at
    `
	rows, err := r.db.QueryContext(ctx, query, common.NormalizeName(name))
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []common.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// Get 依 ID 取得商品
func (r *SQLiteRepository) Get(ctx context.Context, id uuid.UUID) (common.Item, error) {
	query := `
        SELECT id, name, category, usage_count, created_at, updated_at
        FROM items
        WHERE id = ?
    `
	item, err := scanItem(r.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return common.Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return item, err
}

// Add 新增商品
func (r *SQLiteRepository) Add(ctx context.Context, item common.Item) error {
	query := `
        INSERT INTO items (id, name, name_key, category, usage_count, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO NOTHING
    `
	res, err := r.db.ExecContext(ctx, query,
		item.ID.String(), item.Name, common.NormalizeName(item.Name), item.Category,
		item.UsageCount, formatTime(item.CreatedAt), formatTime(item.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateItem, item.ID)
	}
	return nil
}

// Update 以 ID 覆寫商品
func (r *SQLiteRepository) Update(ctx context.Context, item common.Item) error {
	query := `
        UPDATE items
        SET name = ?, name_key = ?, category = ?, usage_count = ?, updated_at = ?
        WHERE id = ?
    `
	res, err := r.db.ExecContext(ctx, query,
		item.Name, common.NormalizeName(item.Name), item.Category, item.UsageCount,
		formatTime(item.UpdatedAt), item.ID.String())
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return expectOneRow(res, item.ID)
}

// IncrementUsage 使用次數加一
func (r *SQLiteRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE items SET usage_count = usage_count + 1 WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, id.String())
	if err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	return expectOneRow(res, id)
}

// Count 商品數量
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return n, nil
}

// Ping 檢查資料庫連線
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close 關閉資料庫
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (common.Item, error) {
	var (
		item                 common.Item
		id                   string
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &item.Name, &item.Category, &item.UsageCount, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.Item{}, err
		}
		return common.Item{}, fmt.Errorf("failed to scan item: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return common.Item{}, fmt.Errorf("invalid item id %q: %w", id, err)
	}
	item.ID = parsed

	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return common.Item{}, err
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return common.Item{}, err
	}
	return item, nil
}

func expectOneRow(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
