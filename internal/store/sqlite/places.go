package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/staybook/staybook-server/internal/domain"
	"github.com/staybook/staybook-server/internal/id"
	"github.com/staybook/staybook-server/internal/store"
)

// placeColumns is the ordered list of columns selected in place queries.
// Must match the scan order in scanPlace.
const placeColumns = `id, owner, title, address, photos, description, perks, extra_info,
	check_in, check_out, max_guests, price, photo_placeholders, created_at, updated_at`

func scanPlace(scanner interface{ Scan(dest ...any) error }) (*domain.Place, error) {
	var (
		p            domain.Place
		photosJSON   string
		perksJSON    string
		placeholders sql.NullString
		createdAt    string
		updatedAt    string
	)

	err := scanner.Scan(
		&p.ID,
		&p.Owner,
		&p.Title,
		&p.Address,
		&photosJSON,
		&p.Description,
		&perksJSON,
		&p.ExtraInfo,
		&p.CheckIn,
		&p.CheckOut,
		&p.MaxGuests,
		&p.Price,
		&placeholders,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(photosJSON), &p.Photos); err != nil {
		return nil, fmt.Errorf("decode photos: %w", err)
	}
	if err := json.Unmarshal([]byte(perksJSON), &p.Perks); err != nil {
		return nil, fmt.Errorf("decode perks: %w", err)
	}
	if placeholders.Valid && placeholders.String != "" {
		if err := json.Unmarshal([]byte(placeholders.String), &p.PhotoPlaceholders); err != nil {
			return nil, fmt.Errorf("decode photo placeholders: %w", err)
		}
	}

	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	p.Normalize()
	return &p, nil
}

// placeArgs returns the column values of p in placeColumns order.
func placeArgs(p *domain.Place) ([]any, error) {
	photos := p.Photos
	if photos == nil {
		photos = []string{}
	}
	photosJSON, err := json.Marshal(photos)
	if err != nil {
		return nil, fmt.Errorf("encode photos: %w", err)
	}

	perks := p.Perks
	if perks == nil {
		perks = []string{}
	}
	perksJSON, err := json.Marshal(perks)
	if err != nil {
		return nil, fmt.Errorf("encode perks: %w", err)
	}

	var placeholders sql.NullString
	if len(p.PhotoPlaceholders) > 0 {
		raw, err := json.Marshal(p.PhotoPlaceholders)
		if err != nil {
			return nil, fmt.Errorf("encode photo placeholders: %w", err)
		}
		placeholders = sql.NullString{String: string(raw), Valid: true}
	}

	return []any{
		p.ID.String(), p.Owner.String(), p.Title, p.Address, string(photosJSON), p.Description,
		string(perksJSON), p.ExtraInfo, p.CheckIn, p.CheckOut, p.MaxGuests, p.Price,
		placeholders, formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	}, nil
}

// CreatePlace inserts a new place.
func (s *Store) CreatePlace(ctx context.Context, place *domain.Place) error {
	args, err := placeArgs(place)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO places (`+placeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	return mapWriteError(err, nil)
}

// GetPlace retrieves a place by id.
func (s *Store) GetPlace(ctx context.Context, placeID id.ID) (*domain.Place, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+placeColumns+` FROM places WHERE id = ?`, placeID.String())
	p, err := scanPlace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrPlaceNotFound
	}
	if err != nil {
		return nil, mapWriteError(err, nil)
	}
	return p, nil
}

// UpdatePlace overwrites every column except id, owner and created_at.
// Returns store.ErrPlaceNotFound if no row matched.
func (s *Store) UpdatePlace(ctx context.Context, place *domain.Place) error {
	args, err := placeArgs(place)
	if err != nil {
		return err
	}

	// args[2:13] are title through photo_placeholders; args[14] is updated_at.
	res, err := s.db.ExecContext(ctx, `
		UPDATE places SET
			title = ?, address = ?, photos = ?, description = ?, perks = ?, extra_info = ?,
			check_in = ?, check_out = ?, max_guests = ?, price = ?, photo_placeholders = ?,
			updated_at = ?
		WHERE id = ?`,
		append(append(args[2:13:13], args[14]), place.ID.String())...,
	)
	if err != nil {
		return mapWriteError(err, nil)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrPlaceNotFound
	}
	return nil
}

// ListPlaces returns every place, oldest first.
func (s *Store) ListPlaces(ctx context.Context) ([]*domain.Place, error) {
	return s.queryPlaces(ctx, `SELECT `+placeColumns+` FROM places ORDER BY created_at, id`)
}

// ListPlacesByOwner returns the places owned by owner, oldest first.
func (s *Store) ListPlacesByOwner(ctx context.Context, owner id.ID) ([]*domain.Place, error) {
	return s.queryPlaces(ctx, `SELECT `+placeColumns+` FROM places WHERE owner = ? ORDER BY created_at, id`, owner.String())
}

func (s *Store) queryPlaces(ctx context.Context, query string, args ...any) ([]*domain.Place, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapWriteError(err, nil)
	}
	defer rows.Close()

	places := []*domain.Place{}
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, rows.Err()
}
