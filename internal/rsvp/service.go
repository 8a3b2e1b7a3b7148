// internal/rsvp/service.go
//
// RSVP aggregation.
//
// Context
// -------
// A guest session submits the whole party's response in one request.  The
// submission is validated in full before anything is written, then the
// stored response is replaced inside a single transaction.
//
// Workflow
// --------
//   - Status    – guest name, party size, and the current response if any.
//   - Submit    – validate, upsert header, replace attendees, commit.
//   - Summaries – per-guest counts for the admin guest list.
//
// Notes
// -----
// • Validation reports the first violated rule, in this order: party size,
//   attendee names, primary count, meal presence, meal value, dietary
//   length.  Oversized submissions therefore always report party size.
// • Resubmitting identical input yields the same attendee set and bumps
//   responded_at and updated_at.
// • Oxford commas, two spaces after periods.
package rsvp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/guestlist/internal/apperr"
	"github.com/yanizio/guestlist/internal/core"
	"github.com/yanizio/guestlist/internal/database"
	"github.com/yanizio/guestlist/internal/logger"
	"github.com/yanizio/guestlist/internal/metrics"
)

// ErrGuestNotFound is returned when the session's guest no longer exists.
var ErrGuestNotFound = apperr.NotFound("Guest not found")

// Repository is the persistence the service needs.  *Store satisfies it.
type Repository interface {
	Party(ctx context.Context, q sqlx.ExtContext, guestID string) (party, error)
	ByGuest(ctx context.Context, q sqlx.ExtContext, guestID string) (Rsvp, error)
	Attendees(ctx context.Context, q sqlx.ExtContext, rsvpID string) ([]Attendee, error)
	InsertRsvp(ctx context.Context, q sqlx.ExtContext, r Rsvp) error
	TouchRsvp(ctx context.Context, q sqlx.ExtContext, id string, at time.Time) error
	DeleteAttendees(ctx context.Context, q sqlx.ExtContext, rsvpID string) error
	InsertAttendee(ctx context.Context, q sqlx.ExtContext, a Attendee) error
	Summaries(ctx context.Context, q sqlx.ExtContext) (map[string]Summary, error)
	Summary(ctx context.Context, q sqlx.ExtContext, guestID string) (Summary, error)
}

// Service reads and writes RSVPs.
type Service struct {
	db   database.DB
	repo Repository
	now  core.Clock
}

// NewService wires the RSVP service.
func NewService(db database.DB, repo Repository, now core.Clock) *Service {
	if now == nil {
		now = core.SystemClock
	}
	return &Service{db: db, repo: repo, now: now}
}

/*──────────────────────────── reads ────────────────────────────────────────*/

// Status returns the guest's RSVP page state.
func (s *Service) Status(ctx context.Context, guestID string) (Status, error) {
	p, err := s.repo.Party(ctx, s.db, guestID)
	if errors.Is(err, errNoRow) {
		return Status{}, ErrGuestNotFound
	}
	if err != nil {
		return Status{}, apperr.Internal(err)
	}

	st := Status{GuestName: p.Name, PartySize: p.PartySize}
	r, err := s.repo.ByGuest(ctx, s.db, guestID)
	switch {
	case errors.Is(err, errNoRow):
		return st, nil
	case err != nil:
		return Status{}, apperr.Internal(err)
	}

	r.Attendees, err = s.repo.Attendees(ctx, s.db, r.ID)
	if err != nil {
		return Status{}, apperr.Internal(err)
	}
	sortAttendees(r.Attendees)
	st.HasResponded = true
	st.Rsvp = &r
	return st, nil
}

// Summaries returns guest_id → roll-up.  Guests without a response are
// absent.
func (s *Service) Summaries(ctx context.Context) (map[string]Summary, error) {
	m, err := s.repo.Summaries(ctx, s.db)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return m, nil
}

// Summary returns one guest's roll-up.  A guest that has not responded
// gets the zero Summary.
func (s *Service) Summary(ctx context.Context, guestID string) (Summary, error) {
	sum, err := s.repo.Summary(ctx, s.db, guestID)
	switch {
	case errors.Is(err, errNoRow):
		return Summary{}, nil
	case err != nil:
		return Summary{}, apperr.Internal(err)
	}
	return sum, nil
}

/*──────────────────────────── submit ───────────────────────────────────────*/

// Submit validates attendees against the guest's party and replaces the
// stored response.
func (s *Service) Submit(ctx context.Context, guestID string, attendees []AttendeeInput) (Rsvp, error) {
	log := logger.FromContext(ctx)

	p, err := s.repo.Party(ctx, s.db, guestID)
	if errors.Is(err, errNoRow) {
		return Rsvp{}, ErrGuestNotFound
	}
	if err != nil {
		return Rsvp{}, apperr.Internal(err)
	}

	clean, verr := check(attendees, p.PartySize)
	if verr != nil {
		metrics.RSVPSubmissionsTotal.WithLabelValues(string(verr.Code)).Inc()
		log.Infow("rsvp rejected", "guest_id", guestID, "code", verr.Code, "field", verr.Field)
		return Rsvp{}, verr
	}

	now := s.now()
	var out Rsvp
	err = database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		r, err := s.repo.ByGuest(ctx, tx, guestID)
		switch {
		case errors.Is(err, errNoRow):
			r = Rsvp{ID: uuid.NewString(), GuestID: guestID, RespondedAt: now, UpdatedAt: now}
			if err := s.repo.InsertRsvp(ctx, tx, r); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := s.repo.TouchRsvp(ctx, tx, r.ID, now); err != nil {
				return err
			}
			if err := s.repo.DeleteAttendees(ctx, tx, r.ID); err != nil {
				return err
			}
			r.RespondedAt, r.UpdatedAt = now, now
		}

		r.Attendees = make([]Attendee, 0, len(clean))
		for _, in := range clean {
			a := Attendee{
				ID:                  uuid.NewString(),
				RsvpID:              r.ID,
				Name:                in.Name,
				IsAttending:         in.IsAttending,
				MealPreference:      in.MealPreference,
				DietaryRestrictions: in.DietaryRestrictions,
				IsPrimary:           in.IsPrimary,
			}
			if err := s.repo.InsertAttendee(ctx, tx, a); err != nil {
				return err
			}
			r.Attendees = append(r.Attendees, a)
		}
		out = r
		return nil
	})
	if err != nil {
		metrics.RSVPSubmissionsTotal.WithLabelValues(string(apperr.CodeInternal)).Inc()
		return Rsvp{}, apperr.Internal(err)
	}

	sortAttendees(out.Attendees)
	metrics.RSVPSubmissionsTotal.WithLabelValues("ok").Inc()
	log.Infow("rsvp submitted", "guest_id", guestID, "rsvp_id", out.ID, "attendees", len(out.Attendees))
	return out, nil
}

// check applies the submission rules in order and returns the normalised
// attendees or the first violation.
func check(in []AttendeeInput, partySize int) ([]AttendeeInput, *apperr.Error) {
	if len(in) > partySize {
		return nil, apperr.Rule(apperr.CodePartySizeExceeded, "attendees",
			fmt.Sprintf("Cannot submit more than %d attendees", partySize))
	}

	out := make([]AttendeeInput, len(in))
	for i, a := range in {
		a.Name = strings.TrimSpace(a.Name)
		if n := utf8.RuneCountInString(a.Name); n == 0 || n > maxNameLength {
			return nil, apperr.Rule(apperr.CodeInvalidAttendeeName, fmt.Sprintf("attendees[%d].name", i),
				fmt.Sprintf("Attendee name must be 1-%d characters", maxNameLength))
		}
		out[i] = a
	}

	primaries := 0
	for _, a := range out {
		if a.IsPrimary {
			primaries++
		}
	}
	if primaries != 1 {
		return nil, apperr.Rule(apperr.CodeMissingPrimary, "attendees",
			"Exactly one primary attendee is required")
	}

	for i, a := range out {
		if a.IsAttending && (a.MealPreference == nil || strings.TrimSpace(*a.MealPreference) == "") {
			return nil, apperr.Rule(apperr.CodeMissingMealPreference, fmt.Sprintf("attendees[%d].meal_preference", i),
				"Meal preference is required for attending guests")
		}
	}

	for i := range out {
		a := &out[i]
		if a.MealPreference != nil {
			m := strings.ToLower(strings.TrimSpace(*a.MealPreference))
			switch {
			case m == "":
				a.MealPreference = nil
			case !meals[m]:
				return nil, apperr.Rule(apperr.CodeInvalidMealPreference, fmt.Sprintf("attendees[%d].meal_preference", i),
					"Meal preference must be one of beef, chicken, fish, vegetarian, or vegan")
			default:
				a.MealPreference = &m
			}
		}
		if a.DietaryRestrictions != nil {
			d := strings.TrimSpace(*a.DietaryRestrictions)
			switch {
			case d == "":
				a.DietaryRestrictions = nil
			case utf8.RuneCountInString(d) > maxDietaryLength:
				return nil, apperr.Validation(fmt.Sprintf("attendees[%d].dietary_restrictions", i),
					fmt.Sprintf("Dietary restrictions must be at most %d characters", maxDietaryLength))
			default:
				a.DietaryRestrictions = &d
			}
		}
	}
	return out, nil
}
