// internal/guest/store.go
//
// SQL persistence for guests (parties).
//
// Context
// -------
// One row per invited party:
//
//	guests (id PK, name, party_size, created_at)
//
// The invite code, sessions, and RSVP hang off guests.id with ON DELETE
// CASCADE, so Delete is a single statement.
//
// Notes
// -----
// • Every method takes a sqlx.ExtContext so callers may pass *sqlx.DB or a
//   *sqlx.Tx.
// • Oxford commas, two spaces after periods.
package guest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/guestlist/internal/apperr"
)

// ErrNotFound is returned when no guest has the requested id.
var ErrNotFound = apperr.NotFound("Guest not found")

// Guest is one invited party.
type Guest struct {
	ID        string    `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	PartySize int       `db:"party_size" json:"party_size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	qInsert = `INSERT INTO guests (id, name, party_size, created_at) VALUES (?, ?, ?, ?)`
	qGet    = `SELECT id, name, party_size, created_at FROM guests WHERE id = ?`
	qList   = `SELECT id, name, party_size, created_at FROM guests ORDER BY created_at DESC, name ASC`
	qUpdate = `UPDATE guests SET name = ?, party_size = ? WHERE id = ?`
	qDelete = `DELETE FROM guests WHERE id = ?`
)

// Store is the sqlx-backed guest repository.
type Store struct{}

// NewStore returns a Store.
func NewStore() *Store { return &Store{} }

// Insert writes g.
func (Store) Insert(ctx context.Context, q sqlx.ExtContext, g Guest) error {
	if _, err := q.ExecContext(ctx, qInsert, g.ID, g.Name, g.PartySize, g.CreatedAt); err != nil {
		return fmt.Errorf("insert guest: %w", err)
	}
	return nil
}

// Get returns the guest with id or ErrNotFound.
func (Store) Get(ctx context.Context, q sqlx.ExtContext, id string) (Guest, error) {
	var g Guest
	err := sqlx.GetContext(ctx, q, &g, qGet, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Guest{}, ErrNotFound
	}
	if err != nil {
		return Guest{}, fmt.Errorf("get guest: %w", err)
	}
	return g, nil
}

// List returns every guest, newest first.
func (Store) List(ctx context.Context, q sqlx.ExtContext) ([]Guest, error) {
	out := []Guest{}
	if err := sqlx.SelectContext(ctx, q, &out, qList); err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	return out, nil
}

// Update rewrites name and party size.  MySQL reports zero affected rows
// for an UPDATE that changes nothing, so existence is the caller's check.
func (Store) Update(ctx context.Context, q sqlx.ExtContext, g Guest) error {
	if _, err := q.ExecContext(ctx, qUpdate, g.Name, g.PartySize, g.ID); err != nil {
		return fmt.Errorf("update guest: %w", err)
	}
	return nil
}

// Delete removes the guest and, by cascade, everything that references it.
func (Store) Delete(ctx context.Context, q sqlx.ExtContext, id string) error {
	res, err := q.ExecContext(ctx, qDelete, id)
	if err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	return requireRow(res)
}

// requireRow maps zero affected rows onto ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
