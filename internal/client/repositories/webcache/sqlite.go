package webcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/avolkovs/weatherdeck/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, cacheName, url string) (*Entry, error) {
	var (
		status int
		header []byte
		body   []byte
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT status, header, body FROM webcache WHERE cache_name = ? AND url = ?`,
		cacheName, url,
	).Scan(&status, &header, &body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get webcache[%s][%s]: %w", cacheName, url, err)
	}

	var h http.Header
	if len(header) > 0 {
		if err := json.Unmarshal(header, &h); err != nil {
			return nil, fmt.Errorf("failed to decode webcache header for %s: %w", url, err)
		}
	}

	return &Entry{URL: url, Status: status, Header: h, Body: body}, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, cacheName string, e *Entry) error {
	header, err := json.Marshal(e.Header)
	if err != nil {
		return fmt.Errorf("failed to encode webcache header for %s: %w", e.URL, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO webcache (cache_name, url, status, header, body) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cache_name, url) DO UPDATE SET
			status = excluded.status,
			header = excluded.header,
			body   = excluded.body
	`, cacheName, e.URL, e.Status, header, e.Body)
	if err != nil {
		return fmt.Errorf("failed to put webcache[%s][%s]: %w", cacheName, e.URL, err)
	}
	return nil
}

func (r *SQLiteRepository) Names(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT cache_name FROM webcache`)
	if err != nil {
		return nil, fmt.Errorf("failed to list webcache names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan webcache name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate webcache names: %w", err)
	}

	return names, nil
}

func (r *SQLiteRepository) DeleteName(ctx context.Context, cacheName string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM webcache WHERE cache_name = ?`, cacheName)
	if err != nil {
		return fmt.Errorf("failed to delete webcache[%s]: %w", cacheName, err)
	}
	return nil
}
