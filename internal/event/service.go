// internal/event/service.go
//
// Event catalogue.  Guests and admins read it; admins edit it.
package event

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/guestlist/internal/apperr"
	"github.com/yanizio/guestlist/internal/core"
	"github.com/yanizio/guestlist/internal/logger"
	"github.com/yanizio/guestlist/internal/validate"
)

// Event types.
const (
	TypeCeremony  = "ceremony"
	TypeReception = "reception"
	TypeRehearsal = "rehearsal"
	TypeBrunch    = "brunch"
	TypeOther     = "other"
)

// Input carries the editable event fields.
type Input struct {
	Name            string  `json:"name"             validate:"required,max=200"`
	EventType       string  `json:"event_type"       validate:"required,oneof=ceremony reception rehearsal brunch other"`
	EventDate       string  `json:"event_date"       validate:"required,datetime=2006-01-02"`
	EventTime       string  `json:"event_time"       validate:"required,datetime=15:04"`
	LocationName    string  `json:"location_name"    validate:"required,max=300"`
	LocationAddress string  `json:"location_address" validate:"required,max=300"`
	Description     *string `json:"description"      validate:"omitempty,max=2000"`
	DisplayOrder    int     `json:"display_order"    validate:"min=0"`
}

// Repository is the persistence the service needs.  *Store satisfies it.
type Repository interface {
	List(ctx context.Context, q sqlx.ExtContext) ([]Event, error)
	Get(ctx context.Context, q sqlx.ExtContext, id string) (Event, error)
	Insert(ctx context.Context, q sqlx.ExtContext, e Event) error
	Update(ctx context.Context, q sqlx.ExtContext, e Event) error
	Delete(ctx context.Context, q sqlx.ExtContext, id string) error
}

// Service manages events.
type Service struct {
	db   sqlx.ExtContext
	repo Repository
	now  core.Clock
}

// NewService wires the event service.
func NewService(db sqlx.ExtContext, repo Repository, now core.Clock) *Service {
	if now == nil {
		now = core.SystemClock
	}
	return &Service{db: db, repo: repo, now: now}
}

// List returns every event in display order.
func (s *Service) List(ctx context.Context) ([]Event, error) {
	es, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, apperr.From(err)
	}
	return es, nil
}

// Create validates in and stores a new event.
func (s *Service) Create(ctx context.Context, in Input) (Event, error) {
	in = normalise(in)
	if err := validate.Struct(in); err != nil {
		return Event{}, err
	}
	e := apply(Event{ID: uuid.NewString(), CreatedAt: s.now()}, in)
	if err := s.repo.Insert(ctx, s.db, e); err != nil {
		return Event{}, apperr.From(err)
	}
	logger.FromContext(ctx).Infow("event created", "event_id", e.ID, "event_type", e.EventType)
	return e, nil
}

// Update replaces the editable fields of event id.
func (s *Service) Update(ctx context.Context, id string, in Input) (Event, error) {
	in = normalise(in)
	if err := validate.Struct(in); err != nil {
		return Event{}, err
	}
	e, err := s.repo.Get(ctx, s.db, id)
	if err != nil {
		return Event{}, apperr.From(err)
	}
	e = apply(e, in)
	if err := s.repo.Update(ctx, s.db, e); err != nil {
		return Event{}, apperr.From(err)
	}
	return e, nil
}

// Delete removes event id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, s.db, id); err != nil {
		return apperr.From(err)
	}
	logger.FromContext(ctx).Infow("event deleted", "event_id", id)
	return nil
}

func normalise(in Input) Input {
	in.Name = strings.TrimSpace(in.Name)
	in.EventType = strings.ToLower(strings.TrimSpace(in.EventType))
	in.EventDate = strings.TrimSpace(in.EventDate)
	in.EventTime = strings.TrimSpace(in.EventTime)
	in.LocationName = strings.TrimSpace(in.LocationName)
	in.LocationAddress = strings.TrimSpace(in.LocationAddress)
	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if d == "" {
			in.Description = nil
		} else {
			in.Description = &d
		}
	}
	return in
}

func apply(e Event, in Input) Event {
	e.Name = in.Name
	e.EventType = in.EventType
	e.EventDate = in.EventDate
	e.EventTime = in.EventTime
	e.LocationName = in.LocationName
	e.LocationAddress = in.LocationAddress
	e.Description = in.Description
	e.DisplayOrder = in.DisplayOrder
	return e
}
