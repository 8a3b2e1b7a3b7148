// internal/stats/store.go
//
// Read-only aggregate queries behind the admin dashboard.
//
// Notes
// -----
// • Guest totals and the RSVP count come from one statement so
//   pending_rsvps = total_guests - rsvp_count is computed from a single
//   snapshot.
// • SUM over CASE keeps the attendee split portable between MySQL and
//   SQLite; COALESCE turns an empty table into zero.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// counts is the guest/RSVP headline row.
type counts struct {
	TotalGuests            int `db:"total_guests"`
	TotalExpectedAttendees int `db:"total_expected_attendees"`
	RsvpCount              int `db:"rsvp_count"`
}

// attendance is the attendee split across every RSVP.
type attendance struct {
	Attending    int `db:"attending_count"`
	NotAttending int `db:"not_attending_count"`
}

// Recent is one line of the recent-responses panel.
type Recent struct {
	ID                string    `db:"id"                  json:"id"`
	GuestID           string    `db:"guest_id"            json:"guest_id"`
	GuestName         string    `db:"guest_name"          json:"guest_name"`
	RespondedAt       time.Time `db:"responded_at"        json:"responded_at"`
	AttendingCount    int       `db:"attending_count"     json:"attending_count"`
	NotAttendingCount int       `db:"not_attending_count" json:"not_attending_count"`
}

const (
	qCounts = `SELECT
	             (SELECT COUNT(*) FROM guests)                     AS total_guests,
	             (SELECT COALESCE(SUM(party_size), 0) FROM guests) AS total_expected_attendees,
	             (SELECT COUNT(*) FROM rsvps)                      AS rsvp_count`
	qAttendance = `SELECT
	                 COALESCE(SUM(CASE WHEN is_attending = 1 THEN 1 ELSE 0 END), 0) AS attending_count,
	                 COALESCE(SUM(CASE WHEN is_attending = 0 THEN 1 ELSE 0 END), 0) AS not_attending_count
	               FROM rsvp_attendees`
	qRecent = `SELECT r.id, r.guest_id, g.name AS guest_name, r.responded_at,
	                  COALESCE(SUM(CASE WHEN a.is_attending = 1 THEN 1 ELSE 0 END), 0) AS attending_count,
	                  COALESCE(SUM(CASE WHEN a.is_attending = 0 THEN 1 ELSE 0 END), 0) AS not_attending_count
	             FROM rsvps r
	             JOIN guests g ON g.id = r.guest_id
	             LEFT JOIN rsvp_attendees a ON a.rsvp_id = r.id
	            GROUP BY r.id, r.guest_id, g.name, r.responded_at
	            ORDER BY r.responded_at DESC
	            LIMIT ?`
)

// Store runs the dashboard queries.
type Store struct{}

// NewStore returns a Store.
func NewStore() *Store { return &Store{} }

// Counts returns guest and RSVP totals.
func (Store) Counts(ctx context.Context, q sqlx.QueryerContext) (counts, error) {
	var c counts
	if err := sqlx.GetContext(ctx, q, &c, qCounts); err != nil {
		return counts{}, fmt.Errorf("dashboard counts: %w", err)
	}
	return c, nil
}

// Attendance returns the attending / not-attending split.
func (Store) Attendance(ctx context.Context, q sqlx.QueryerContext) (attendance, error) {
	var a attendance
	if err := sqlx.GetContext(ctx, q, &a, qAttendance); err != nil {
		return attendance{}, fmt.Errorf("dashboard attendance: %w", err)
	}
	return a, nil
}

// Recent returns the limit most recent responses.
func (Store) Recent(ctx context.Context, q sqlx.QueryerContext, limit int) ([]Recent, error) {
	out := []Recent{}
	if err := sqlx.SelectContext(ctx, q, &out, qRecent, limit); err != nil {
		return nil, fmt.Errorf("dashboard recent: %w", err)
	}
	return out, nil
}
