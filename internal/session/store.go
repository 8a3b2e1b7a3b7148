// internal/session/store.go
//
// SQL persistence for sessions.
//
// Context
// -------
//
//	sessions (id PK, token UNIQUE, session_type, guest_id NULL FK,
//	          admin_id NULL FK, expires_at, created_at)
//
// Expiry is lazy: every read filters `expires_at > now`, with now supplied
// by the caller's clock rather than the database, so MySQL and SQLite agree.
// Rows past expiry are never swept; they are simply invisible.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var errNoRow = errors.New("session: no row")

const (
	qInsert = `INSERT INTO sessions (id, token, session_type, guest_id, admin_id, expires_at, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	qFindLive = `SELECT id, token, session_type, guest_id, admin_id, expires_at, created_at
	               FROM sessions
	              WHERE token = ? AND expires_at > ?`
	qUpgrade = `UPDATE sessions
	               SET session_type = 'admin', admin_id = ?
	             WHERE token = ? AND session_type = 'admin_pending' AND expires_at > ?`
	qDelete        = `DELETE FROM sessions WHERE token = ?`
	qGuestName     = `SELECT name FROM guests WHERE id = ?`
	qAdminUsername = `SELECT username FROM admins WHERE id = ?`
)

// Store is the sqlx-backed session repository.
type Store struct{}

// NewStore returns a Store.
func NewStore() *Store { return &Store{} }

// Insert writes r.
func (Store) Insert(ctx context.Context, q sqlx.ExtContext, r row) error {
	if _, err := q.ExecContext(ctx, qInsert,
		r.ID, r.Token, r.SessionType, r.GuestID, r.AdminID, r.ExpiresAt, r.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// FindLive returns the unexpired row for token.
func (Store) FindLive(ctx context.Context, q sqlx.ExtContext, token string, now time.Time) (row, error) {
	var r row
	err := sqlx.GetContext(ctx, q, &r, qFindLive, token, now)
	if errors.Is(err, sql.ErrNoRows) {
		return row{}, errNoRow
	}
	if err != nil {
		return row{}, fmt.Errorf("find session: %w", err)
	}
	return r, nil
}

// Upgrade flips a live admin_pending row to admin.  It reports whether a
// row changed; false means the token was not a live admin_pending session.
func (Store) Upgrade(ctx context.Context, q sqlx.ExtContext, token, adminID string, now time.Time) (bool, error) {
	res, err := q.ExecContext(ctx, qUpgrade, adminID, token, now)
	if err != nil {
		return false, fmt.Errorf("upgrade session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("upgrade session rows: %w", err)
	}
	return n == 1, nil
}

// Delete removes the row for token, if any.
func (Store) Delete(ctx context.Context, q sqlx.ExtContext, token string) error {
	if _, err := q.ExecContext(ctx, qDelete, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// GuestName returns the display name of guestID.
func (Store) GuestName(ctx context.Context, q sqlx.ExtContext, guestID string) (string, error) {
	return scalar(ctx, q, qGuestName, guestID)
}

// AdminUsername returns the username of adminID.
func (Store) AdminUsername(ctx context.Context, q sqlx.ExtContext, adminID string) (string, error) {
	return scalar(ctx, q, qAdminUsername, adminID)
}

func scalar(ctx context.Context, q sqlx.ExtContext, query, arg string) (string, error) {
	var s string
	err := sqlx.GetContext(ctx, q, &s, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errNoRow
	}
	if err != nil {
		return "", fmt.Errorf("session lookup: %w", err)
	}
	return s, nil
}
