// internal/invite/service.go
//
// Invite code registry.
//
// Context
// -------
// Codes are the only credential a guest ever holds.  The registry answers
// "who does this code belong to" and mints or replaces codes for guests.
//
// Workflow
// --------
//   - Validate   – exact lookup; GuestMatch or AdminMatch.
//   - Issue      – fresh random code for a new guest (caller's tx).
//   - Assign     – caller-chosen code for a new guest (seed CLI).
//   - Regenerate – replace a guest's code in one transaction; the old code
//     stops validating at commit.
//
// Notes
// -----
// • Codes are not single use.  Every session the same code produced keeps
//   working after regeneration; only new exchanges are affected.
// • Oxford commas, two spaces after periods.
package invite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/guestlist/internal/apperr"
	"github.com/yanizio/guestlist/internal/core"
	"github.com/yanizio/guestlist/internal/database"
	"github.com/yanizio/guestlist/internal/logger"
	"github.com/yanizio/guestlist/internal/metrics"
)

// Code types stored in invite_codes.code_type.
const (
	TypeGuest = "guest"
	TypeAdmin = "admin"
)

// maxCodeLength matches the invite_codes.code column.
const maxCodeLength = 32

// Errors surfaced to callers.
var (
	ErrCodeNotFound  = apperr.NotFound("Invalid code")
	ErrGuestNotFound = apperr.NotFound("Guest not found")
)

// Kind says what a code unlocks.
type Kind int

const (
	GuestMatch Kind = iota + 1
	AdminMatch
)

// Match is the result of a successful Validate.
type Match struct {
	Kind    Kind
	GuestID string // set for GuestMatch only
}

// Repository is the persistence the registry needs.  *Store satisfies it.
type Repository interface {
	FindByCode(ctx context.Context, q sqlx.ExtContext, code string) (Row, error)
	CodeExists(ctx context.Context, q sqlx.ExtContext, code string) (bool, error)
	ForGuest(ctx context.Context, q sqlx.ExtContext, guestID string) (Row, error)
	GuestExists(ctx context.Context, q sqlx.ExtContext, guestID string) (bool, error)
	Insert(ctx context.Context, q sqlx.ExtContext, r Row) error
	UpdateCode(ctx context.Context, q sqlx.ExtContext, id, code string) error
	GuestCodes(ctx context.Context, q sqlx.ExtContext) (map[string]string, error)
}

// Service is the invite code registry.
type Service struct {
	db     database.DB
	repo   Repository
	length int
	now    core.Clock
	gen    func(n int) (string, error)
}

// NewService wires the registry.  length is the generated code length;
// zero or less selects DefaultCodeLength.
func NewService(db database.DB, repo Repository, length int, now core.Clock) *Service {
	if length <= 0 {
		length = DefaultCodeLength
	}
	if now == nil {
		now = core.SystemClock
	}
	return &Service{db: db, repo: repo, length: length, now: now, gen: Generate}
}

/*──────────────────────────── lookup ───────────────────────────────────────*/

// Validate resolves code.  Surrounding whitespace is ignored; case is not.
func (s *Service) Validate(ctx context.Context, code string) (Match, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Match{}, ErrCodeNotFound
	}

	r, err := s.repo.FindByCode(ctx, s.db, code)
	if errors.Is(err, errNoRow) {
		return Match{}, ErrCodeNotFound
	}
	if err != nil {
		return Match{}, apperr.Internal(err)
	}

	switch r.CodeType {
	case TypeGuest:
		if !r.GuestID.Valid {
			return Match{}, apperr.Internal(fmt.Errorf("guest code %s has no guest", r.ID))
		}
		return Match{Kind: GuestMatch, GuestID: r.GuestID.String}, nil
	case TypeAdmin:
		return Match{Kind: AdminMatch}, nil
	default:
		return Match{}, apperr.Internal(fmt.Errorf("invite code %s has unknown type %q", r.ID, r.CodeType))
	}
}

// CodeFor returns the guest's current code, or "" when none exists.
func (s *Service) CodeFor(ctx context.Context, guestID string) (string, error) {
	r, err := s.repo.ForGuest(ctx, s.db, guestID)
	if errors.Is(err, errNoRow) {
		return "", nil
	}
	if err != nil {
		return "", apperr.Internal(err)
	}
	return r.Code, nil
}

// GuestCodes returns guest_id → code for every guest.
func (s *Service) GuestCodes(ctx context.Context) (map[string]string, error) {
	m, err := s.repo.GuestCodes(ctx, s.db)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return m, nil
}

/*──────────────────────────── minting ──────────────────────────────────────*/

// Issue creates a fresh guest code inside the caller's transaction.
func (s *Service) Issue(ctx context.Context, q sqlx.ExtContext, guestID string) (string, error) {
	code, err := s.pickUnique(ctx, q)
	if err != nil {
		return "", err
	}
	if err := s.repo.Insert(ctx, q, s.newRow(code, TypeGuest, guestID)); err != nil {
		return "", apperr.Internal(err)
	}
	return code, nil
}

// Assign stores a caller-chosen guest code inside the caller's transaction.
func (s *Service) Assign(ctx context.Context, q sqlx.ExtContext, guestID, code string) (string, error) {
	code, err := s.checkExplicit(ctx, q, code)
	if err != nil {
		return "", err
	}
	if err := s.repo.Insert(ctx, q, s.newRow(code, TypeGuest, guestID)); err != nil {
		return "", apperr.Internal(err)
	}
	return code, nil
}

// CreateAdminCode stores an admin code.  Admin codes reference no guest.
func (s *Service) CreateAdminCode(ctx context.Context, code string) (string, error) {
	return s.AddAdminCode(ctx, s.db, code)
}

// AddAdminCode is CreateAdminCode inside the caller's transaction.
func (s *Service) AddAdminCode(ctx context.Context, q sqlx.ExtContext, code string) (string, error) {
	code, err := s.checkExplicit(ctx, q, code)
	if err != nil {
		return "", err
	}
	if err := s.repo.Insert(ctx, q, s.newRow(code, TypeAdmin, "")); err != nil {
		return "", apperr.Internal(err)
	}
	return code, nil
}

// Regenerate replaces guestID's code.  The swap happens in one
// transaction, so no reader ever sees the guest with zero or two codes.
func (s *Service) Regenerate(ctx context.Context, guestID string) (string, error) {
	var code string
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		ok, err := s.repo.GuestExists(ctx, tx, guestID)
		if err != nil {
			return apperr.Internal(err)
		}
		if !ok {
			return ErrGuestNotFound
		}

		if code, err = s.pickUnique(ctx, tx); err != nil {
			return err
		}

		row, err := s.repo.ForGuest(ctx, tx, guestID)
		switch {
		case errors.Is(err, errNoRow):
			return wrapInternal(s.repo.Insert(ctx, tx, s.newRow(code, TypeGuest, guestID)))
		case err != nil:
			return apperr.Internal(err)
		default:
			return wrapInternal(s.repo.UpdateCode(ctx, tx, row.ID, code))
		}
	})
	if err != nil {
		return "", apperr.From(err)
	}

	metrics.InviteCodesRegeneratedTotal.Inc()
	logger.FromContext(ctx).Infow("invite code regenerated", "guest_id", guestID)
	return code, nil
}

/*──────────────────────────── helpers ──────────────────────────────────────*/

// pickUnique draws codes until one is free, up to maxAttempts.
func (s *Service) pickUnique(ctx context.Context, q sqlx.ExtContext) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		code, err := s.gen(s.length)
		if err != nil {
			return "", apperr.Internal(err)
		}
		taken, err := s.repo.CodeExists(ctx, q, code)
		if err != nil {
			return "", apperr.Internal(err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", apperr.Internal(fmt.Errorf("no unique invite code after %d attempts", maxAttempts))
}

func (s *Service) checkExplicit(ctx context.Context, q sqlx.ExtContext, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", apperr.Validation("invite_code", "invite_code is required")
	}
	if len(code) > maxCodeLength {
		return "", apperr.Validation("invite_code", fmt.Sprintf("invite_code must be at most %d characters", maxCodeLength))
	}
	taken, err := s.repo.CodeExists(ctx, q, code)
	if err != nil {
		return "", apperr.Internal(err)
	}
	if taken {
		return "", apperr.Conflict("invite_code", "Invite code already in use")
	}
	return code, nil
}

func (s *Service) newRow(code, codeType, guestID string) Row {
	return Row{
		ID:        uuid.NewString(),
		Code:      code,
		CodeType:  codeType,
		GuestID:   sql.NullString{String: guestID, Valid: guestID != ""},
		CreatedAt: s.now(),
	}
}

func wrapInternal(err error) error {
	if err == nil {
		return nil
	}
	return apperr.Internal(err)
}
