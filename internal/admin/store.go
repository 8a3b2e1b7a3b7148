// internal/admin/store.go
//
// SQL persistence for administrators.
//
//	admins (id PK, username UNIQUE, password_hash, created_at)
//
// Admins are created out of band (cmd/seed); the HTTP surface only reads
// them and rotates their password hash.
package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var errNoRow = errors.New("admin: no row")

// Admin is one administrator account.
type Admin struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

const (
	qByUsername = `SELECT id, username, password_hash, created_at FROM admins WHERE username = ?`
	qByID       = `SELECT id, username, password_hash, created_at FROM admins WHERE id = ?`
	qInsert     = `INSERT INTO admins (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)`
	qSetHash    = `UPDATE admins SET password_hash = ? WHERE id = ?`
)

// Store is the sqlx-backed admin repository.
type Store struct{}

// NewStore returns a Store.
func NewStore() *Store { return &Store{} }

// ByUsername returns the admin with username.
func (Store) ByUsername(ctx context.Context, q sqlx.ExtContext, username string) (Admin, error) {
	return get(ctx, q, qByUsername, username)
}

// ByID returns the admin with id.
func (Store) ByID(ctx context.Context, q sqlx.ExtContext, id string) (Admin, error) {
	return get(ctx, q, qByID, id)
}

// Insert writes a.
func (Store) Insert(ctx context.Context, q sqlx.ExtContext, a Admin) error {
	if _, err := q.ExecContext(ctx, qInsert, a.ID, a.Username, a.PasswordHash, a.CreatedAt); err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

// SetPasswordHash replaces the stored hash for id.
func (Store) SetPasswordHash(ctx context.Context, q sqlx.ExtContext, id, hash string) error {
	if _, err := q.ExecContext(ctx, qSetHash, hash, id); err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}
	return nil
}

func get(ctx context.Context, q sqlx.ExtContext, query, arg string) (Admin, error) {
	var a Admin
	err := sqlx.GetContext(ctx, q, &a, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return Admin{}, errNoRow
	}
	if err != nil {
		return Admin{}, fmt.Errorf("get admin: %w", err)
	}
	return a, nil
}
