// Package mongo provides a MongoDB-backed store.Store.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/staybook/staybook-server/internal/store"
)

// Collection names.
const (
	usersCollection    = "users"
	placesCollection   = "places"
	bookingsCollection = "bookings"
)

const (
	connectTimeout    = 10 * time.Second
	disconnectTimeout = 10 * time.Second
)

// Store provides MongoDB-backed persistence for the StayBook server.
type Store struct {
	client   *mongo.Client
	db       *mongo.Database
	users    *mongo.Collection
	places   *mongo.Collection
	bookings *mongo.Collection
	logger   *slog.Logger
}

var _ store.Store = (*Store)(nil)

// Open connects to uri, selects database, and ensures indexes exist.
func Open(ctx context.Context, uri, database string, logger *slog.Logger) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(uri).
		SetAppName("staybook-server"))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:   client,
		db:       db,
		users:    db.Collection(usersCollection),
		places:   db.Collection(placesCollection),
		bookings: db.Collection(bookingsCollection),
		logger:   logger,
	}

	if err := s.ensureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	if logger != nil {
		logger.Info("MongoDB connected", "database", database)
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.users: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
		},
		s.places: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: 1}}},
		},
		s.bookings: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "place", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// Close disconnects from the server.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()

	err := s.client.Disconnect(ctx)
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return nil
	}
	return err
}

// Shutdown implements do.Shutdowner.
func (s *Store) Shutdown() error {
	return s.Close()
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	err := s.client.Ping(ctx, readpref.Primary())
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return store.ErrClosed
	}
	return err
}

// Drop removes the whole database. Used by tests and the seed command.
func (s *Store) Drop(ctx context.Context) error {
	return s.db.Drop(ctx)
}

// byCreated sorts oldest first with the id as tie breaker.
func byCreated() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
}

// mapError translates driver errors into store sentinels.
func mapError(err error, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments) && notFound != nil:
		return notFound
	case mongo.IsDuplicateKeyError(err):
		if duplicate == nil {
			duplicate = store.ErrAlreadyExists
		}
		return fmt.Errorf("%w: %v", duplicate, err)
	case errors.Is(err, mongo.ErrClientDisconnected):
		return store.ErrClosed
	default:
		return err
	}
}
