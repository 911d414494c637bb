// Package walstore keeps recommendations and status checks in an embedded append-only log.
package walstore

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
	"github.com/vadiminshakov/gowal"
)

const (
	defaultDir           = "./wal/recommendations"
	segmentThreshold     = 1000
	maxSegments          = 1000
	recommendationPrefix = "recommendation_"
	statusCheckPrefix    = "status_check_"
)

// WALStore appends JSON records to a gowal log; keys are prefixed by record kind.
type WALStore struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewWALStore opens (or recovers) the log under dir.
func NewWALStore(dir string) (*WALStore, error) {
	if dir == "" {
		dir = defaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "advisor_",
		SegmentThreshold: segmentThreshold,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(domain.ErrStoreUnavailable, "init recommendations WAL: "+err.Error())
	}

	return &WALStore{wal: wal}, nil
}

// SaveRecommendation appends the recommendation to the log.
func (s *WALStore) SaveRecommendation(_ context.Context, rec domain.Recommendation) error {
	return s.append(recommendationPrefix+rec.Symbol, rec)
}

// RecentRecommendations returns up to limit recommendations, newest first.
func (s *WALStore) RecentRecommendations(_ context.Context, limit int) ([]domain.Recommendation, error) {
	recs, err := readAll[domain.Recommendation](s, recommendationPrefix)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})

	return truncate(recs, limit), nil
}

// SaveStatusCheck appends the status check to the log.
func (s *WALStore) SaveStatusCheck(_ context.Context, check domain.StatusCheck) error {
	return s.append(statusCheckPrefix+check.ClientName, check)
}

// StatusChecks returns up to limit status checks, newest first.
func (s *WALStore) StatusChecks(_ context.Context, limit int) ([]domain.StatusCheck, error) {
	checks, err := readAll[domain.StatusCheck](s, statusCheckPrefix)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(checks, func(i, j int) bool {
		return checks[i].Timestamp.After(checks[j].Timestamp)
	})

	return truncate(checks, limit), nil
}

func (s *WALStore) append(key string, v any) error {
	if s == nil || s.wal == nil {
		return errors.Wrap(domain.ErrStoreUnavailable, "WAL store is not initialized")
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshal WAL record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	if err := s.wal.Write(nextIndex, key, payload); err != nil {
		return errors.Wrap(domain.ErrStoreUnavailable, "write WAL record: "+err.Error())
	}
	return nil
}

// readAll decodes every record whose key starts with prefix, in log order.
func readAll[T any](s *WALStore, prefix string) ([]T, error) {
	if s == nil || s.wal == nil {
		return nil, errors.Wrap(domain.ErrStoreUnavailable, "WAL store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	current := s.wal.CurrentIndex()
	out := make([]T, 0)
	for idx := uint64(1); idx <= current; idx++ {
		key, payload, err := s.wal.Get(idx)
		if err != nil || payload == nil || !strings.HasPrefix(key, prefix) {
			continue
		}
		var v T
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, errors.Wrapf(domain.ErrStoreUnavailable, "decode WAL record %d: %s", idx, err)
		}
		out = append(out, v)
	}

	return out, nil
}

func truncate[T any](items []T, limit int) []T {
	if limit >= 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

// CurrentIndex returns the latest WAL index stored.
func (s *WALStore) CurrentIndex() uint64 {
	if s == nil || s.wal == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.wal.CurrentIndex()
}

// Close closes the underlying WAL.
func (s *WALStore) Close(_ context.Context) error {
	if s == nil || s.wal == nil {
		return errors.New("WAL store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
