// Package storage selects the persistence backend for recommendations and status checks.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/vadiminshakov/cryptoadvisor/config"
	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
	"github.com/vadiminshakov/cryptoadvisor/internal/storage/mongostore"
	"github.com/vadiminshakov/cryptoadvisor/internal/storage/sqlitestore"
	"github.com/vadiminshakov/cryptoadvisor/internal/storage/walstore"
	"github.com/vadiminshakov/cryptoadvisor/pkg/retrier"
	"go.uber.org/zap"
)

// Store is an append-only log of recommendations plus a log of status checks.
// Failures wrap domain.ErrStoreUnavailable.
type Store interface {
	SaveRecommendation(ctx context.Context, rec domain.Recommendation) error
	// RecentRecommendations returns up to limit records ordered by CreatedAt descending.
	RecentRecommendations(ctx context.Context, limit int) ([]domain.Recommendation, error)
	SaveStatusCheck(ctx context.Context, check domain.StatusCheck) error
	StatusChecks(ctx context.Context, limit int) ([]domain.StatusCheck, error)
	Close(ctx context.Context) error
}

// Open creates the backend named by cfg.Driver.
func Open(ctx context.Context, l *zap.Logger, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case config.StorageMongo:
		r := retrier.New(
			retrier.WithMaxRetries(4),
			retrier.WithInitialInterval(500*time.Millisecond),
			retrier.WithOnRetry(func(attempt int, err error) {
				l.Warn("mongo not reachable, retrying", zap.Int("attempt", attempt), zap.Error(err))
			}),
		)
		s, err := mongostore.Connect(ctx, l, cfg.MongoURL, cfg.DBName, r)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StorageWAL:
		s, err := walstore.NewWALStore(cfg.WALDir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.StorageSQLite:
		s, err := sqlitestore.New(l, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
