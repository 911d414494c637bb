// Package mongostore keeps recommendations and status checks in MongoDB.
package mongostore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/cryptoadvisor/internal/domain"
	"github.com/vadiminshakov/cryptoadvisor/pkg/retrier"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	RecommendationsCollection = "recommendations"
	StatusChecksCollection    = "status_checks"

	connectTimeout = 5 * time.Second
)

// Store appends documents and reads them back newest first.
type Store struct {
	client          *mongo.Client
	recommendations *mongo.Collection
	statusChecks    *mongo.Collection
	l               *zap.Logger
}

// New wraps an already connected database.
func New(l *zap.Logger, db *mongo.Database) *Store {
	return &Store{
		client:          db.Client(),
		recommendations: db.Collection(RecommendationsCollection),
		statusChecks:    db.Collection(StatusChecksCollection),
		l:               l,
	}
}

// Connect dials MongoDB and waits until the server answers a ping.
func Connect(ctx context.Context, l *zap.Logger, uri, dbName string, r *retrier.Retrier) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(connectTimeout))
	if err != nil {
		return nil, errors.Wrap(domain.ErrStoreUnavailable, "connect to mongo: "+err.Error())
	}

	err = r.Do(ctx, func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(domain.ErrStoreUnavailable, "ping mongo: "+err.Error())
	}

	s := New(l, client.Database(dbName))
	s.ensureIndexes(ctx)

	l.Info("connected to MongoDB", zap.String("db", dbName))

	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) {
	for _, coll := range []struct {
		c     *mongo.Collection
		field string
	}{
		{s.recommendations, "created_at"},
		{s.statusChecks, "timestamp"},
	} {
		_, err := coll.c.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: coll.field, Value: -1}}})
		if err != nil {
			s.l.Warn("failed to create index",
				zap.String("collection", coll.c.Name()), zap.String("field", coll.field), zap.Error(err))
		}
	}
}

// SaveRecommendation inserts a new document, repeated saves create repeated rows.
func (s *Store) SaveRecommendation(ctx context.Context, rec domain.Recommendation) error {
	if _, err := s.recommendations.InsertOne(ctx, rec); err != nil {
		return errors.Wrap(domain.ErrStoreUnavailable, "insert recommendation: "+err.Error())
	}
	return nil
}

// RecentRecommendations returns up to limit recommendations sorted by created_at descending.
func (s *Store) RecentRecommendations(ctx context.Context, limit int) ([]domain.Recommendation, error) {
	recs := make([]domain.Recommendation, 0)
	if err := s.findRecent(ctx, s.recommendations, "created_at", limit, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// SaveStatusCheck inserts a status check document.
func (s *Store) SaveStatusCheck(ctx context.Context, check domain.StatusCheck) error {
	if _, err := s.statusChecks.InsertOne(ctx, check); err != nil {
		return errors.Wrap(domain.ErrStoreUnavailable, "insert status check: "+err.Error())
	}
	return nil
}

// StatusChecks returns up to limit status checks, newest first.
func (s *Store) StatusChecks(ctx context.Context, limit int) ([]domain.StatusCheck, error) {
	checks := make([]domain.StatusCheck, 0)
	if err := s.findRecent(ctx, s.statusChecks, "timestamp", limit, &checks); err != nil {
		return nil, err
	}
	return checks, nil
}

// findRecent orders by sortField, then by _id for writes within the same millisecond.
func (s *Store) findRecent(ctx context.Context, coll *mongo.Collection, sortField string, limit int, out any) error {
	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return errors.Wrap(domain.ErrStoreUnavailable, "find in "+coll.Name()+": "+err.Error())
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return errors.Wrap(domain.ErrStoreUnavailable, "decode "+coll.Name()+": "+err.Error())
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
