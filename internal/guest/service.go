// internal/guest/service.go
//
// Guest and party management.
//
// Context
// -------
// Admins create, edit, list, and delete parties.  Creating a guest also
// mints its invite code in the same transaction, so a guest never exists
// without a code.
//
// Notes
// -----
// • Names are trimmed before validation and storage.
// • Oxford commas, two spaces after periods.
package guest

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/guestlist/internal/apperr"
	"github.com/yanizio/guestlist/internal/core"
	"github.com/yanizio/guestlist/internal/database"
	"github.com/yanizio/guestlist/internal/logger"
	"github.com/yanizio/guestlist/internal/validate"
)

// Input carries the editable guest fields.
type Input struct {
	Name      string `json:"name"       validate:"required,max=200"`
	PartySize int    `json:"party_size" validate:"min=1,max=20"`
}

// Created is returned by Create.
type Created struct {
	Guest
	InviteCode string `json:"invite_code"`
}

// Repository is the persistence the service needs.  *Store satisfies it.
type Repository interface {
	Insert(ctx context.Context, q sqlx.ExtContext, g Guest) error
	Get(ctx context.Context, q sqlx.ExtContext, id string) (Guest, error)
	List(ctx context.Context, q sqlx.ExtContext) ([]Guest, error)
	Update(ctx context.Context, q sqlx.ExtContext, g Guest) error
	Delete(ctx context.Context, q sqlx.ExtContext, id string) error
}

// CodeIssuer mints invite codes inside a caller's transaction.
// *invite.Service satisfies it.
type CodeIssuer interface {
	Issue(ctx context.Context, q sqlx.ExtContext, guestID string) (string, error)
	Assign(ctx context.Context, q sqlx.ExtContext, guestID, code string) (string, error)
}

// Service manages guests.
type Service struct {
	db    database.DB
	repo  Repository
	codes CodeIssuer
	now   core.Clock
}

// NewService wires the guest service.
func NewService(db database.DB, repo Repository, codes CodeIssuer, now core.Clock) *Service {
	if now == nil {
		now = core.SystemClock
	}
	return &Service{db: db, repo: repo, codes: codes, now: now}
}

// Create inserts a guest and its invite code atomically.  A non-empty code
// is used verbatim; otherwise one is generated.
func (s *Service) Create(ctx context.Context, in Input, code string) (Created, error) {
	in = normalise(in)
	if err := validate.Struct(in); err != nil {
		return Created{}, err
	}

	g := Guest{
		ID:        uuid.NewString(),
		Name:      in.Name,
		PartySize: in.PartySize,
		CreatedAt: s.now(),
	}

	var issued string
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.repo.Insert(ctx, tx, g); err != nil {
			return apperr.Internal(err)
		}
		var err error
		if code != "" {
			issued, err = s.codes.Assign(ctx, tx, g.ID, code)
		} else {
			issued, err = s.codes.Issue(ctx, tx, g.ID)
		}
		return err
	})
	if err != nil {
		return Created{}, apperr.From(err)
	}

	logger.FromContext(ctx).Infow("guest created", "guest_id", g.ID, "party_size", g.PartySize)
	return Created{Guest: g, InviteCode: issued}, nil
}

// Get returns one guest.
func (s *Service) Get(ctx context.Context, id string) (Guest, error) {
	g, err := s.repo.Get(ctx, s.db, id)
	if err != nil {
		return Guest{}, apperr.From(err)
	}
	return g, nil
}

// List returns all guests, newest first.
func (s *Service) List(ctx context.Context) ([]Guest, error) {
	gs, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, apperr.From(err)
	}
	return gs, nil
}

// Update rewrites the guest's name and party size.  Shrinking a party below
// an existing RSVP's attendee count is allowed; the next submission is held
// to the new size.
func (s *Service) Update(ctx context.Context, id string, in Input) (Guest, error) {
	in = normalise(in)
	if err := validate.Struct(in); err != nil {
		return Guest{}, err
	}

	g, err := s.repo.Get(ctx, s.db, id)
	if err != nil {
		return Guest{}, apperr.From(err)
	}
	g.Name, g.PartySize = in.Name, in.PartySize
	if err := s.repo.Update(ctx, s.db, g); err != nil {
		return Guest{}, apperr.From(err)
	}
	return g, nil
}

// Delete removes a guest; storage cascades to code, sessions, and RSVP.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		return apperr.From(err)
	}
	logger.FromContext(ctx).Infow("guest deleted", "guest_id", id)
	return nil
}

func normalise(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	return in
}
