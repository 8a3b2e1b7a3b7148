// internal/admin/service.go
//
// Administrator authentication.
//
// Context
// -------
// An admin invite code only yields an admin_pending session.  Login checks
// username and password against a bcrypt hash and, on success, upgrades
// that same session to admin.  A failed login leaves the session pending
// so the user can retry without re-entering the code.
//
// Workflow
// --------
//   - Login          – pending session + credentials → admin session.
//   - ChangePassword – re-verify current password, store a new hash.
//   - Create         – seed-time account creation.
//   - Provision      – Create plus caller work in the same transaction.
//
// Notes
// -----
// • Unknown usernames still pay for one bcrypt comparison against a dummy
//   hash, so response time does not reveal which usernames exist.
// • Changing a password does not revoke other sessions.
// • Oxford commas, two spaces after periods.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/yanizio/guestlist/internal/apperr"
	"github.com/yanizio/guestlist/internal/core"
	"github.com/yanizio/guestlist/internal/database"
	"github.com/yanizio/guestlist/internal/logger"
	"github.com/yanizio/guestlist/internal/metrics"
	"github.com/yanizio/guestlist/internal/session"
)

// bcrypt ignores input beyond 72 bytes; longer passwords are rejected.
const maxPasswordBytes = 72

const dummyPassword = "guestlist-no-such-admin"

// Repository is the persistence the service needs.  *Store satisfies it.
type Repository interface {
	ByUsername(ctx context.Context, q sqlx.ExtContext, username string) (Admin, error)
	ByID(ctx context.Context, q sqlx.ExtContext, id string) (Admin, error)
	Insert(ctx context.Context, q sqlx.ExtContext, a Admin) error
	SetPasswordHash(ctx context.Context, q sqlx.ExtContext, id, hash string) error
}

// Sessions is the slice of the session manager Login needs.
// *session.Manager satisfies it.
type Sessions interface {
	Lookup(ctx context.Context, token string) (session.Session, error)
	Upgrade(ctx context.Context, token, adminID string) (session.Session, error)
}

// Options tunes password policy.
type Options struct {
	MinPasswordLength int
	BcryptCost        int
}

// Service authenticates administrators.
type Service struct {
	db       database.DB
	repo     Repository
	sessions Sessions
	opts     Options
	now      core.Clock

	// dummyHash is compared against for unknown usernames.
	dummyHash []byte
}

// NewService wires the admin service.  It hashes the dummy password up
// front, so the first unknown-username login costs the same as any other.
func NewService(db database.DB, repo Repository, sessions Sessions, opts Options, now core.Clock) *Service {
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = 8
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if now == nil {
		now = core.SystemClock
	}
	return &Service{
		db:        db,
		repo:      repo,
		sessions:  sessions,
		opts:      opts,
		now:       now,
		dummyHash: newDummyHash(opts.BcryptCost),
	}
}

/*──────────────────────────── login ────────────────────────────────────────*/

// Login verifies credentials for the admin_pending session behind token
// and upgrades it in place.
func (s *Service) Login(ctx context.Context, token, username, password string) (Admin, error) {
	sess, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		return Admin{}, err
	}
	if sess.Kind() != session.KindAdminPending {
		return Admin{}, apperr.ErrUnauthenticated
	}

	log := logger.FromContext(ctx)
	a, err := s.repo.ByUsername(ctx, s.db, strings.TrimSpace(username))
	switch {
	case errors.Is(err, errNoRow):
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		metrics.AdminLoginFailuresTotal.Inc()
		log.Warnw("admin login failed", "session_id", sess.ID, "reason", "unknown_user")
		return Admin{}, apperr.ErrInvalidCredentials
	case err != nil:
		return Admin{}, apperr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		metrics.AdminLoginFailuresTotal.Inc()
		log.Warnw("admin login failed", "session_id", sess.ID, "reason", "bad_password")
		return Admin{}, apperr.ErrInvalidCredentials
	}

	if _, err := s.sessions.Upgrade(ctx, token, a.ID); err != nil {
		return Admin{}, err
	}
	log.Infow("admin login", "session_id", sess.ID, "admin_id", a.ID)
	return a, nil
}

// newDummyHash hashes dummyPassword at cost, falling back to the default
// cost when bcrypt rejects it.
func newDummyHash(cost int) []byte {
	h, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), cost)
	if err != nil {
		h, _ = bcrypt.GenerateFromPassword([]byte(dummyPassword), bcrypt.DefaultCost)
	}
	return h
}

/*──────────────────────────── passwords ────────────────────────────────────*/

// ChangePassword replaces adminID's password after re-verifying current.
func (s *Service) ChangePassword(ctx context.Context, adminID, current, next string) error {
	a, err := s.repo.ByID(ctx, s.db, adminID)
	if errors.Is(err, errNoRow) {
		return apperr.ErrUnauthenticated
	}
	if err != nil {
		return apperr.Internal(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(current)); err != nil {
		return apperr.Validation("current_password", "Current password is incorrect")
	}
	if err := s.checkPolicy("new_password", next); err != nil {
		return err
	}

	hash, err := s.HashPassword(next)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.repo.SetPasswordHash(ctx, s.db, a.ID, hash); err != nil {
		return apperr.Internal(err)
	}
	logger.FromContext(ctx).Infow("admin password changed", "admin_id", a.ID)
	return nil
}

// HashPassword returns a bcrypt hash at the configured cost.
func (s *Service) HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *Service) checkPolicy(field, password string) error {
	if len(password) < s.opts.MinPasswordLength {
		return apperr.Validation(field,
			fmt.Sprintf("Password must be at least %d characters", s.opts.MinPasswordLength))
	}
	if len(password) > maxPasswordBytes {
		return apperr.Validation(field,
			fmt.Sprintf("Password must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}

/*──────────────────────────── accounts ─────────────────────────────────────*/

// Create inserts a new admin.  Duplicate usernames are a conflict.
func (s *Service) Create(ctx context.Context, username, password string) (Admin, error) {
	return s.Provision(ctx, username, password, nil)
}

// Provision inserts a new admin and, when also is non-nil, runs it in the
// same transaction.  An error from also rolls the account back.
func (s *Service) Provision(ctx context.Context, username, password string, also func(tx *sqlx.Tx) error) (Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(username) > 100 {
		return Admin{}, apperr.Validation("username", "username must be 1-100 characters")
	}
	if err := s.checkPolicy("password", password); err != nil {
		return Admin{}, err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return Admin{}, apperr.Internal(err)
	}
	a := Admin{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}

	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		_, err := s.repo.ByUsername(ctx, tx, username)
		switch {
		case err == nil:
			return apperr.Conflict("username", "Username already exists")
		case !errors.Is(err, errNoRow):
			return apperr.Internal(err)
		}
		if err := s.repo.Insert(ctx, tx, a); err != nil {
			return apperr.Internal(err)
		}
		if also != nil {
			return also(tx)
		}
		return nil
	})
	if err != nil {
		return Admin{}, apperr.From(err)
	}
	return a, nil
}
