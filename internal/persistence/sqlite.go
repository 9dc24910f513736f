package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tathienbao/indicator-engine/internal/types"
	"github.com/tathienbao/indicator-engine/pkg/indicator"
	"gopkg.in/yaml.v3"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite repository.
func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := &SQLiteRepository{db: db}

	if err := repo.Migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return repo, nil
}

// Migrate runs database migrations.
func (r *SQLiteRepository) Migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS indicator_configs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			period INTEGER NOT NULL,
			source TEXT NOT NULL,
			history_cap INTEGER NOT NULL,
			params TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_configs_name ON indicator_configs(name)`,

		`CREATE TABLE IF NOT EXISTS indicator_points (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			indicator_id TEXT NOT NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			symbol TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			value TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_points_indicator ON indicator_points(indicator_id, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_points_symbol ON indicator_points(symbol)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}

	return nil
}

// SaveConfig upserts an indicator configuration.
func (r *SQLiteRepository) SaveConfig(ctx context.Context, cfg indicator.Config) error {
	params, err := marshalParams(cfg.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	query := `INSERT INTO indicator_configs (id, name, kind, period, source, history_cap, params)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			period = excluded.period,
			source = excluded.source,
			history_cap = excluded.history_cap,
			params = excluded.params`

	_, err = r.db.ExecContext(ctx, query,
		cfg.ID,
		cfg.Name,
		string(cfg.Kind),
		cfg.Period,
		string(cfg.Source),
		cfg.HistoryCap,
		params,
	)
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	return nil
}

// GetConfigs returns all stored indicator configurations.
func (r *SQLiteRepository) GetConfigs(ctx context.Context) ([]indicator.Config, error) {
	query := `SELECT id, name, kind, period, source, history_cap, params
		FROM indicator_configs ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query configs: %w", err)
	}
	defer rows.Close()

	var configs []indicator.Config
	for rows.Next() {
		var cfg indicator.Config
		var kind, source string
		var params sql.NullString

		if err := rows.Scan(&cfg.ID, &cfg.Name, &kind, &cfg.Period, &source, &cfg.HistoryCap, &params); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		cfg.Kind = indicator.Kind(kind)
		cfg.Source = indicator.Source(source)

		if params.Valid && params.String != "" {
			if err := yaml.Unmarshal([]byte(params.String), &cfg.Params); err != nil {
				return nil, fmt.Errorf("unmarshal params: %w", err)
			}
		}

		configs = append(configs, cfg)
	}

	return configs, rows.Err()
}

// SavePoint saves one indicator point.
func (r *SQLiteRepository) SavePoint(ctx context.Context, point Point) error {
	query := `INSERT INTO indicator_points (indicator_id, name, kind, symbol, timestamp, value)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		point.IndicatorID,
		point.Name,
		string(point.Kind),
		point.Symbol,
		point.Timestamp,
		valueToNullString(point.Value),
	)
	if err != nil {
		return fmt.Errorf("save point: %w", err)
	}

	return nil
}

// SavePoints saves a batch of points in one transaction.
func (r *SQLiteRepository) SavePoints(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO indicator_points (indicator_id, name, kind, symbol, timestamp, value)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, point := range points {
		_, err := stmt.ExecContext(ctx,
			point.IndicatorID,
			point.Name,
			string(point.Kind),
			point.Symbol,
			point.Timestamp,
			valueToNullString(point.Value),
		)
		if err != nil {
			return fmt.Errorf("save point: %w", err)
		}
	}

	return tx.Commit()
}

// GetPoints returns the most recent points for an indicator, newest
// first, up to limit.
func (r *SQLiteRepository) GetPoints(ctx context.Context, indicatorID string, limit int) ([]Point, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT indicator_id, name, kind, symbol, timestamp, value
		FROM indicator_points
		WHERE indicator_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, indicatorID, limit)
	if err != nil {
		return nil, fmt.Errorf("query points: %w", err)
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		point, err := scanPoint(rows)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}

	return points, rows.Err()
}

// GetLatestPoint returns the most recent point for an indicator.
func (r *SQLiteRepository) GetLatestPoint(ctx context.Context, indicatorID string) (*Point, error) {
	points, err := r.GetPoints(ctx, indicatorID, 1)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, types.ErrPointNotFound
	}
	return &points[0], nil
}

// Close closes the database connection.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func scanPoint(rows *sql.Rows) (Point, error) {
	var point Point
	var kind string
	var value sql.NullString

	if err := rows.Scan(&point.IndicatorID, &point.Name, &kind, &point.Symbol, &point.Timestamp, &value); err != nil {
		return point, fmt.Errorf("scan point: %w", err)
	}
	point.Kind = indicator.Kind(kind)

	if value.Valid {
		d, err := decimal.NewFromString(value.String)
		if err != nil {
			return point, fmt.Errorf("parse value: %w", err)
		}
		point.Value = indicator.NewValue(d)
	} else {
		point.Value = indicator.Unavailable()
	}

	return point, nil
}

func valueToNullString(v indicator.Value) sql.NullString {
	d, ok := v.Decimal()
	if !ok {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func marshalParams(params map[string]string) (sql.NullString, error) {
	if len(params) == 0 {
		return sql.NullString{}, nil
	}
	data, err := yaml.Marshal(params)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
