// internal/invite/store.go
//
// SQL persistence for invite codes.
//
// Context
// -------
//
//	invite_codes (id PK, code UNIQUE, code_type, guest_id NULL FK, created_at)
//
// Guest codes always carry guest_id; admin codes never do.  A guest has at
// most one guest-type row, which regeneration rewrites in place.
//
// Notes
// -----
// • Lookups are exact, byte-for-byte matches on `code`.
package invite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// errNoRow is internal; the service maps it onto client-facing errors.
var errNoRow = errors.New("invite: no row")

// Row mirrors one invite_codes record.
type Row struct {
	ID        string         `db:"id"`
	Code      string         `db:"code"`
	CodeType  string         `db:"code_type"`
	GuestID   sql.NullString `db:"guest_id"`
	CreatedAt time.Time      `db:"created_at"`
}

const (
	qFindByCode  = `SELECT id, code, code_type, guest_id, created_at FROM invite_codes WHERE code = ?`
	qCodeExists  = `SELECT COUNT(*) FROM invite_codes WHERE code = ?`
	qForGuest    = `SELECT id, code, code_type, guest_id, created_at FROM invite_codes WHERE guest_id = ? AND code_type = 'guest'`
	qGuestExists = `SELECT COUNT(*) FROM guests WHERE id = ?`
	qInsert      = `INSERT INTO invite_codes (id, code, code_type, guest_id, created_at) VALUES (?, ?, ?, ?, ?)`
	qUpdateCode  = `UPDATE invite_codes SET code = ? WHERE id = ?`
	qGuestCodes  = `SELECT guest_id, code FROM invite_codes WHERE code_type = 'guest' AND guest_id IS NOT NULL`
)

// Store is the sqlx-backed invite code repository.
type Store struct{}

// NewStore returns a Store.
func NewStore() *Store { return &Store{} }

// FindByCode returns the row whose code matches exactly.
func (Store) FindByCode(ctx context.Context, q sqlx.ExtContext, code string) (Row, error) {
	var r Row
	err := sqlx.GetContext(ctx, q, &r, qFindByCode, code)
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, errNoRow
	}
	if err != nil {
		return Row{}, fmt.Errorf("find invite code: %w", err)
	}
	return r, nil
}

// CodeExists reports whether code is already taken.
func (Store) CodeExists(ctx context.Context, q sqlx.ExtContext, code string) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, qCodeExists, code); err != nil {
		return false, fmt.Errorf("check invite code: %w", err)
	}
	return n > 0, nil
}

// ForGuest returns the guest-type row for guestID.
func (Store) ForGuest(ctx context.Context, q sqlx.ExtContext, guestID string) (Row, error) {
	var r Row
	err := sqlx.GetContext(ctx, q, &r, qForGuest, guestID)
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, errNoRow
	}
	if err != nil {
		return Row{}, fmt.Errorf("find guest invite code: %w", err)
	}
	return r, nil
}

// GuestExists reports whether a guest row with id exists.
func (Store) GuestExists(ctx context.Context, q sqlx.ExtContext, guestID string) (bool, error) {
	var n int
	if err := sqlx.GetContext(ctx, q, &n, qGuestExists, guestID); err != nil {
		return false, fmt.Errorf("check guest: %w", err)
	}
	return n > 0, nil
}

// Insert writes r.
func (Store) Insert(ctx context.Context, q sqlx.ExtContext, r Row) error {
	if _, err := q.ExecContext(ctx, qInsert, r.ID, r.Code, r.CodeType, r.GuestID, r.CreatedAt); err != nil {
		return fmt.Errorf("insert invite code: %w", err)
	}
	return nil
}

// UpdateCode replaces the code on row id.
func (Store) UpdateCode(ctx context.Context, q sqlx.ExtContext, id, code string) error {
	if _, err := q.ExecContext(ctx, qUpdateCode, code, id); err != nil {
		return fmt.Errorf("update invite code: %w", err)
	}
	return nil
}

// GuestCodes returns guest_id → code for every guest-type row.
func (Store) GuestCodes(ctx context.Context, q sqlx.ExtContext) (map[string]string, error) {
	rows, err := q.QueryxContext(ctx, qGuestCodes)
	if err != nil {
		return nil, fmt.Errorf("list guest codes: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var guestID, code string
		if err := rows.Scan(&guestID, &code); err != nil {
			return nil, fmt.Errorf("scan guest code: %w", err)
		}
		out[guestID] = code
	}
	return out, rows.Err()
}
