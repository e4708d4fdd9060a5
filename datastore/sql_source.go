package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/coreybb/itemgate/models"
	_ "github.com/lib/pq"
)

const selectItemsQuery = `
	SELECT id::text, name
	FROM items
`

// SQLSource reads items from a Postgres table named items with id and name
// columns. Rows are returned in the order the database produces them.
type SQLSource struct {
	name string
	dsn  string
	open func(driverName, dsn string) (*sql.DB, error)
}

// NewSQLSource creates a SQLSource. No connection is opened until
// FetchItems is called.
func NewSQLSource(name, dsn string) *SQLSource {
	return &SQLSource{name: name, dsn: dsn, open: sql.Open}
}

func (s *SQLSource) Name() string {
	return s.name
}

// FetchItems opens a single-connection handle, reads all rows and closes it.
func (s *SQLSource) FetchItems(ctx context.Context) ([]models.Item, error) {
	slog.Info("Connecting to source", "source", s.name, "url", redactURL(s.dsn))

	db, err := s.open("postgres", s.dsn)
	if err != nil {
		slog.Error("Source connection error", "source", s.name, "error", err)
		return nil, connectError(s.name, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Warn("Source disconnect failed", "source", s.name, "error", err)
		}
	}()
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		slog.Error("Source connection error", "source", s.name, "error", err)
		return nil, connectError(s.name, err)
	}
	slog.Info("Connected to source", "source", s.name)

	items, err := scanItems(ctx, db)
	if err != nil {
		slog.Error("Source query error", "source", s.name, "error", err)
		return nil, queryError(s.name, err)
	}
	if len(items) == 0 {
		slog.Info("No items retrieved from source", "source", s.name)
	}
	return items, nil
}

func scanItems(ctx context.Context, db *sql.DB) ([]models.Item, error) {
	rows, err := db.QueryContext(ctx, selectItemsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var id sql.NullString
		var name sql.NullString
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, models.Item{
			ID:   nullableString(id),
			Name: nullableString(name),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}
	return items, nil
}

func nullableString(v sql.NullString) any {
	if !v.Valid {
		return nil
	}
	return v.String
}
