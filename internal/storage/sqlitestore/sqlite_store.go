// Package sqlitestore keeps recommendations and status checks in a single SQLite file.
package sqlitestore

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// Store timestamps are kept as unix nanoseconds so ordering survives sub-second writes.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database file and runs migrations.
func New(l *zap.Logger, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(domain.ErrStoreUnavailable, "open sqlite: "+err.Error())
	}
	// one writer at a time, sqlite serializes writes anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, errors.Wrap(domain.ErrStoreUnavailable, "set WAL mode: "+err.Error())
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.Wrap(domain.ErrStoreUnavailable, "migrate: "+err.Error())
	}

	l.Info("sqlite store opened", zap.String("path", path))
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS recommendations (
			id           TEXT PRIMARY KEY,
			symbol       TEXT NOT NULL,
			action       TEXT NOT NULL,
			confidence   TEXT NOT NULL,
			reasoning    TEXT NOT NULL,
			price_target REAL,
			created_at   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recommendations_created ON recommendations(created_at)`,

		`CREATE TABLE IF NOT EXISTS status_checks (
			id          TEXT PRIMARY KEY,
			client_name TEXT NOT NULL,
			timestamp   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_status_checks_ts ON status_checks(timestamp)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRecommendation inserts one row per call.
func (s *Store) SaveRecommendation(ctx context.Context, rec domain.Recommendation) error {
	var target sql.NullFloat64
	if rec.PriceTarget != nil {
		target = sql.NullFloat64{Float64: *rec.PriceTarget, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recommendations (id, symbol, action, confidence, reasoning, price_target, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Symbol, string(rec.Action), string(rec.Confidence), rec.Reasoning, target,
		rec.CreatedAt.UnixNano())
	if err != nil {
		return errors.Wrap(domain.ErrStoreUnavailable, "insert recommendation: "+err.Error())
	}
	return nil
}

// RecentRecommendations returns up to limit rows ordered by created_at descending.
func (s *Store) RecentRecommendations(ctx context.Context, limit int) ([]domain.Recommendation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, symbol, action, confidence, reasoning, price_target, created_at
		 FROM recommendations ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(domain.ErrStoreUnavailable, "query recommendations: "+err.Error())
	}
	defer rows.Close()

	recs := make([]domain.Recommendation, 0)
	for rows.Next() {
		var (
			rec       domain.Recommendation
			action    string
			conf      string
			target    sql.NullFloat64
			createdAt int64
		)
		if err := rows.Scan(&rec.ID, &rec.Symbol, &action, &conf, &rec.Reasoning, &target, &createdAt); err != nil {
			return nil, errors.Wrap(domain.ErrStoreUnavailable, "scan recommendation: "+err.Error())
		}
		rec.Action = domain.Action(action)
		rec.Confidence = domain.Confidence(conf)
		if target.Valid {
			v := target.Float64
			rec.PriceTarget = &v
		}
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(domain.ErrStoreUnavailable, "iterate recommendations: "+err.Error())
	}

	return recs, nil
}

// SaveStatusCheck inserts a status check row.
func (s *Store) SaveStatusCheck(ctx context.Context, check domain.StatusCheck) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO status_checks (id, client_name, timestamp) VALUES (?, ?, ?)`,
		check.ID, check.ClientName, check.Timestamp.UnixNano())
	if err != nil {
		return errors.Wrap(domain.ErrStoreUnavailable, "insert status check: "+err.Error())
	}
	return nil
}

// StatusChecks returns up to limit status checks, newest first.
func (s *Store) StatusChecks(ctx context.Context, limit int) ([]domain.StatusCheck, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client_name, timestamp FROM status_checks ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(domain.ErrStoreUnavailable, "query status checks: "+err.Error())
	}
	defer rows.Close()

	checks := make([]domain.StatusCheck, 0)
	for rows.Next() {
		var (
			check domain.StatusCheck
			ts    int64
		)
		if err := rows.Scan(&check.ID, &check.ClientName, &ts); err != nil {
			return nil, errors.Wrap(domain.ErrStoreUnavailable, "scan status check: "+err.Error())
		}
		check.Timestamp = time.Unix(0, ts).UTC()
		checks = append(checks, check)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(domain.ErrStoreUnavailable, "iterate status checks: "+err.Error())
	}

	return checks, nil
}

// Close closes the database handle.
func (s *Store) Close(_ context.Context) error {
	return s.db.Close()
}
