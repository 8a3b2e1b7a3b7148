// internal/session/manager.go
//
// Session manager: code exchange, lookup, upgrade, and revocation.
//
// Workflow
//   Begin    – invite code → new guest or admin_pending session.
//   Lookup   – token → live Session, or Unauthenticated.
//   Upgrade  – admin_pending → admin on the same token (single UPDATE
//              guarded by type and expiry, so it cannot race a revoke).
//   Revoke   – delete; idempotent.
//   Describe – introspection view with display names.
//
// Tokens are 32 bytes from crypto/rand, hex encoded (64 chars).
//
//------------------------------------------------------------------------------

package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/guestlist/internal/apperr"
	"github.com/yanizio/guestlist/internal/core"
	"github.com/yanizio/guestlist/internal/invite"
	"github.com/yanizio/guestlist/internal/logger"
	"github.com/yanizio/guestlist/internal/metrics"
)

// DefaultTTL applies when the configured TTL is zero.
const DefaultTTL = 7 * 24 * time.Hour

// tokenBytes is the raw entropy per token.
const tokenBytes = 32

// Repository is the persistence the manager needs.  *Store satisfies it.
type Repository interface {
	Insert(ctx context.Context, q sqlx.ExtContext, r row) error
	FindLive(ctx context.Context, q sqlx.ExtContext, token string, now time.Time) (row, error)
	Upgrade(ctx context.Context, q sqlx.ExtContext, token, adminID string, now time.Time) (bool, error)
	Delete(ctx context.Context, q sqlx.ExtContext, token string) error
	GuestName(ctx context.Context, q sqlx.ExtContext, guestID string) (string, error)
	AdminUsername(ctx context.Context, q sqlx.ExtContext, adminID string) (string, error)
}

// CodeValidator resolves invite codes.  *invite.Service satisfies it.
type CodeValidator interface {
	Validate(ctx context.Context, code string) (invite.Match, error)
}

// Manager owns the session lifecycle.
type Manager struct {
	db    sqlx.ExtContext
	repo  Repository
	codes CodeValidator
	ttl   time.Duration
	now   core.Clock
}

// NewManager wires a Manager.
func NewManager(db sqlx.ExtContext, repo Repository, codes CodeValidator, ttl time.Duration, now core.Clock) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = core.SystemClock
	}
	return &Manager{db: db, repo: repo, codes: codes, ttl: ttl, now: now}
}

// Begin exchanges an invite code for a new session.  An unknown code is a
// validation failure on field "code".
func (m *Manager) Begin(ctx context.Context, code string) (Session, error) {
	match, err := m.codes.Validate(ctx, code)
	if errors.Is(err, invite.ErrCodeNotFound) {
		return Session{}, apperr.Validation("code", "Invalid code")
	}
	if err != nil {
		return Session{}, apperr.From(err)
	}

	var p Principal
	switch match.Kind {
	case invite.GuestMatch:
		p = GuestPrincipal{GuestID: match.GuestID}
	case invite.AdminMatch:
		p = AdminPendingPrincipal{}
	default:
		return Session{}, apperr.Internal(fmt.Errorf("unexpected match kind %d", match.Kind))
	}

	token, err := NewToken()
	if err != nil {
		return Session{}, apperr.Internal(err)
	}
	now := m.now()
	s := Session{
		ID:        uuid.NewString(),
		Token:     token,
		ExpiresAt: now.Add(m.ttl),
		Principal: p,
	}
	if err := m.repo.Insert(ctx, m.db, toRow(s, now)); err != nil {
		return Session{}, apperr.Internal(err)
	}

	metrics.SessionsCreatedTotal.WithLabelValues(string(s.Kind())).Inc()
	logger.FromContext(ctx).Infow("session created", "session_id", s.ID, "type", s.Kind())
	return s, nil
}

// Lookup returns the live session for token.
func (m *Manager) Lookup(ctx context.Context, token string) (Session, error) {
	if token == "" {
		return Session{}, apperr.ErrUnauthenticated
	}
	r, err := m.repo.FindLive(ctx, m.db, token, m.now())
	if errors.Is(err, errNoRow) {
		return Session{}, apperr.ErrUnauthenticated
	}
	if err != nil {
		return Session{}, apperr.Internal(err)
	}
	s, err := fromRow(r)
	if err != nil {
		return Session{}, apperr.Internal(err)
	}
	return s, nil
}

// Upgrade turns the live admin_pending session for token into an admin
// session for adminID.  The token does not change.
func (m *Manager) Upgrade(ctx context.Context, token, adminID string) (Session, error) {
	if token == "" {
		return Session{}, apperr.ErrUnauthenticated
	}
	ok, err := m.repo.Upgrade(ctx, m.db, token, adminID, m.now())
	if err != nil {
		return Session{}, apperr.Internal(err)
	}
	if !ok {
		return Session{}, apperr.ErrUnauthenticated
	}
	return m.Lookup(ctx, token)
}

// Revoke deletes the session for token.  Unknown tokens are not an error.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.repo.Delete(ctx, m.db, token); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Describe builds the introspection view for s.
func (m *Manager) Describe(ctx context.Context, s Session) (View, error) {
	v := View{SessionType: s.Kind()}
	switch p := s.Principal.(type) {
	case GuestPrincipal:
		name, err := m.repo.GuestName(ctx, m.db, p.GuestID)
		if err != nil {
			return View{}, describeErr(err)
		}
		v.GuestID, v.GuestName = p.GuestID, name
	case AdminPrincipal:
		name, err := m.repo.AdminUsername(ctx, m.db, p.AdminID)
		if err != nil {
			return View{}, describeErr(err)
		}
		v.AdminID, v.AdminUsername = p.AdminID, name
	}
	return v, nil
}

// describeErr treats a vanished principal as a dead session.
func describeErr(err error) error {
	if errors.Is(err, errNoRow) {
		return apperr.ErrUnauthenticated
	}
	return apperr.Internal(err)
}

// NewToken returns 32 random bytes, hex encoded.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(b), nil
}
