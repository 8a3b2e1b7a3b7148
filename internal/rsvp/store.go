// internal/rsvp/store.go
//
// SQL persistence for RSVPs and attendees.
//
// Notes
// -----
// • The upsert is written as SELECT-then-UPDATE/INSERT inside the caller's
//   transaction; MySQL and SQLite disagree on native upsert syntax.
// • Booleans are compared with `= 1` so TINYINT (MySQL) and INTEGER
//   (SQLite) storage behave the same.
package rsvp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var errNoRow = errors.New("rsvp: no row")

// party is the guest slice the aggregator needs.
type party struct {
	Name      string `db:"name"`
	PartySize int    `db:"party_size"`
}

// summaryRow is one line of the per-guest roll-up.
type summaryRow struct {
	GuestID      string    `db:"guest_id"`
	RespondedAt  time.Time `db:"responded_at"`
	Attending    int       `db:"attending_count"`
	NotAttending int       `db:"not_attending_count"`
}

const (
	qParty     = `SELECT name, party_size FROM guests WHERE id = ?`
	qByGuest   = `SELECT id, guest_id, responded_at, updated_at FROM rsvps WHERE guest_id = ?`
	qAttendees = `SELECT id, rsvp_id, name, is_attending, meal_preference, dietary_restrictions, is_primary
	                FROM rsvp_attendees
	               WHERE rsvp_id = ?
	               ORDER BY is_primary DESC, name ASC`
	qInsertRsvp      = `INSERT INTO rsvps (id, guest_id, responded_at, updated_at) VALUES (?, ?, ?, ?)`
	qTouchRsvp       = `UPDATE rsvps SET responded_at = ?, updated_at = ? WHERE id = ?`
	qDeleteAttendees = `DELETE FROM rsvp_attendees WHERE rsvp_id = ?`
	qInsertAttendee  = `INSERT INTO rsvp_attendees
	                   (id, rsvp_id, name, is_attending, meal_preference, dietary_restrictions, is_primary)
	                   VALUES (?, ?, ?, ?, ?, ?, ?)`
	qSummaries = `SELECT r.guest_id, r.responded_at,
	                     COALESCE(SUM(CASE WHEN a.is_attending = 1 THEN 1 ELSE 0 END), 0) AS attending_count,
	                     COALESCE(SUM(CASE WHEN a.is_attending = 0 THEN 1 ELSE 0 END), 0) AS not_attending_count
	                FROM rsvps r
	                LEFT JOIN rsvp_attendees a ON a.rsvp_id = r.id
	               GROUP BY r.id, r.guest_id, r.responded_at`
	qSummary = `SELECT r.guest_id, r.responded_at,
	                   COALESCE(SUM(CASE WHEN a.is_attending = 1 THEN 1 ELSE 0 END), 0) AS attending_count,
	                   COALESCE(SUM(CASE WHEN a.is_attending = 0 THEN 1 ELSE 0 END), 0) AS not_attending_count
	              FROM rsvps r
	              LEFT JOIN rsvp_attendees a ON a.rsvp_id = r.id
	             WHERE r.guest_id = ?
	             GROUP BY r.id, r.guest_id, r.responded_at`)

// Store is the sqlx-backed RSVP repository.
type Store struct{}

// NewStore returns a Store.
func NewStore() *Store { return &Store{} }

// Party returns the guest's name and party size.
func (Store) Party(ctx context.Context, q sqlx.ExtContext, guestID string) (party, error) {
	var p party
	err := sqlx.GetContext(ctx, q, &p, qParty, guestID)
	if errors.Is(err, sql.ErrNoRows) {
		return party{}, errNoRow
	}
	if err != nil {
		return party{}, fmt.Errorf("get party: %w", err)
	}
	return p, nil
}

// ByGuest returns the guest's RSVP header (no attendees).
func (Store) ByGuest(ctx context.Context, q sqlx.ExtContext, guestID string) (Rsvp, error) {
	var r Rsvp
	err := sqlx.GetContext(ctx, q, &r, qByGuest, guestID)
	if errors.Is(err, sql.ErrNoRows) {
		return Rsvp{}, errNoRow
	}
	if err != nil {
		return Rsvp{}, fmt.Errorf("get rsvp: %w", err)
	}
	return r, nil
}

// Attendees returns the RSVP's attendees, primary first, then by name.
func (Store) Attendees(ctx context.Context, q sqlx.ExtContext, rsvpID string) ([]Attendee, error) {
	out := []Attendee{}
	if err := sqlx.SelectContext(ctx, q, &out, qAttendees, rsvpID); err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return out, nil
}

// InsertRsvp writes a new RSVP header.
func (Store) InsertRsvp(ctx context.Context, q sqlx.ExtContext, r Rsvp) error {
	if _, err := q.ExecContext(ctx, qInsertRsvp, r.ID, r.GuestID, r.RespondedAt, r.UpdatedAt); err != nil {
		return fmt.Errorf("insert rsvp: %w", err)
	}
	return nil
}

// TouchRsvp stamps responded_at and updated_at on an existing header.
func (Store) TouchRsvp(ctx context.Context, q sqlx.ExtContext, id string, at time.Time) error {
	if _, err := q.ExecContext(ctx, qTouchRsvp, at, at, id); err != nil {
		return fmt.Errorf("touch rsvp: %w", err)
	}
	return nil
}

// DeleteAttendees removes every attendee of rsvpID.
func (Store) DeleteAttendees(ctx context.Context, q sqlx.ExtContext, rsvpID string) error {
	if _, err := q.ExecContext(ctx, qDeleteAttendees, rsvpID); err != nil {
		return fmt.Errorf("delete attendees: %w", err)
	}
	return nil
}

// InsertAttendee writes one attendee.
func (Store) InsertAttendee(ctx context.Context, q sqlx.ExtContext, a Attendee) error {
	if _, err := q.ExecContext(ctx, qInsertAttendee,
		a.ID, a.RsvpID, a.Name, a.IsAttending, a.MealPreference, a.DietaryRestrictions, a.IsPrimary,
	); err != nil {
		return fmt.Errorf("insert attendee: %w", err)
	}
	return nil
}

// Summaries returns guest_id → roll-up for every guest that has responded.
func (Store) Summaries(ctx context.Context, q sqlx.ExtContext) (map[string]Summary, error) {
	var rows []summaryRow
	if err := sqlx.SelectContext(ctx, q, &rows, qSummaries); err != nil {
		return nil, fmt.Errorf("rsvp summaries: %w", err)
	}
	out := make(map[string]Summary, len(rows))
	for _, r := range rows {
		out[r.GuestID] = r.summary()
	}
	return out, nil
}

// Summary returns guestID's roll-up, or errNoRow when the guest has not
// responded.
func (Store) Summary(ctx context.Context, q sqlx.ExtContext, guestID string) (Summary, error) {
	var r summaryRow
	err := sqlx.GetContext(ctx, q, &r, qSummary, guestID)
	if errors.Is(err, sql.ErrNoRows) {
		return Summary{}, errNoRow
	}
	if err != nil {
		return Summary{}, fmt.Errorf("rsvp summary: %w", err)
	}
	return r.summary(), nil
}

func (r summaryRow) summary() Summary {
	at := r.RespondedAt
	return Summary{
		HasResponded:      true,
		RespondedAt:       &at,
		AttendingCount:    r.Attending,
		NotAttendingCount: r.NotAttending,
	}
}
