package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/staybook/staybook-server/internal/domain"
)

// Key prefixes.
const (
	userPrefix    = "user:"
	placePrefix   = "place:"
	bookingPrefix = "booking:"
)

// conflictRetries bounds retries of transactions that lost a write race.
const conflictRetries = 3

// Badger is the embedded document store. Documents are JSON values under a
// per-collection key prefix with secondary index keys alongside.
type Badger struct {
	db     *badger.DB
	logger *slog.Logger

	Users    *Entity[domain.User]
	Places   *Entity[domain.Place]
	Bookings *Entity[domain.Booking]
}

// New opens (or creates) a Badger store at path.
func New(path string, logger *slog.Logger) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	s, err := open(opts, logger)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}
	return s, nil
}

// NewInMemory opens a Badger store that lives only in memory.
func NewInMemory(logger *slog.Logger) (*Badger, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Badger, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Badger{db: db, logger: logger}
	s.initUsers()
	s.initPlaces()
	s.initBookings()
	return s, nil
}

// Close gracefully closes the database.
func (s *Badger) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Shutdown implements do.Shutdowner.
func (s *Badger) Shutdown() error {
	return s.Close()
}

// Ping reports whether the database is open.
func (s *Badger) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return ErrClosed
	}
	return nil
}

func (s *Badger) view(fn func(txn *badger.Txn) error) error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	return s.db.View(fn)
}

// update runs fn in a read-write transaction, retrying when a concurrent
// transaction committed a conflicting write first.
func (s *Badger) update(fn func(txn *badger.Txn) error) error {
	if s.db.IsClosed() {
		return ErrClosed
	}

	var err error
	for range conflictRetries {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// initUsers indexes users by normalized email so lookups are case-insensitive.
func (s *Badger) initUsers() {
	s.Users = NewEntity[domain.User](s, userPrefix, ErrUserNotFound).
		WithUniqueIndex("email",
			func(u *domain.User) []string {
				return []string{domain.NormalizeEmail(u.Email)}
			},
			domain.NormalizeEmail,
			ErrEmailExists,
		)
}

func (s *Badger) initPlaces() {
	s.Places = NewEntity[domain.Place](s, placePrefix, ErrPlaceNotFound).
		WithIndex("owner", func(p *domain.Place) []string {
			return []string{p.Owner.String()}
		})
}

func (s *Badger) initBookings() {
	s.Bookings = NewEntity[domain.Booking](s, bookingPrefix, ErrNotFound).
		WithIndex("user", func(b *domain.Booking) []string {
			return []string{b.User.String()}
		}).
		WithIndex("place", func(b *domain.Booking) []string {
			return []string{b.Place.String()}
		})
}

// sortByCreated orders documents oldest first, breaking ties by id.
func sortByCreated[T any](items []*T, created func(*T) time.Time, docID func(*T) string) {
	slices.SortStableFunc(items, func(a, b *T) int {
		if c := created(a).Compare(created(b)); c != 0 {
			return c
		}
		return strings.Compare(docID(a), docID(b))
	})
}
