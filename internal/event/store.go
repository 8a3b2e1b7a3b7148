// internal/event/store.go
//
// SQL persistence for the wedding-weekend event catalogue.
//
//	events (id PK, name, event_type, event_date 'YYYY-MM-DD',
//	        event_time 'HH:MM', location_name, location_address,
//	        description NULL, display_order, created_at)
//
// Date and time are stored as fixed-width strings so ordering is lexical
// and identical on MySQL and SQLite.
package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/guestlist/internal/apperr"
)

// ErrNotFound is returned for unknown event ids.
var ErrNotFound = apperr.NotFound("Event not found")

// Event is one scheduled event.
type Event struct {
	ID              string    `db:"id"               json:"id"`
	Name            string    `db:"name"             json:"name"`
	EventType       string    `db:"event_type"       json:"event_type"`
	EventDate       string    `db:"event_date"       json:"event_date"`
	EventTime       string    `db:"event_time"       json:"event_time"`
	LocationName    string    `db:"location_name"    json:"location_name"`
	LocationAddress string    `db:"location_address" json:"location_address"`
	Description     *string   `db:"description"      json:"description"`
	DisplayOrder    int       `db:"display_order"    json:"display_order"`
	CreatedAt       time.Time `db:"created_at"       json:"created_at"`
}

const (
	cols    = `id, name, event_type, event_date, event_time, location_name, location_address, description, display_order, created_at`
	qList   = `SELECT ` + cols + ` FROM events ORDER BY display_order ASC, event_date ASC, event_time ASC`
	qGet    = `SELECT ` + cols + ` FROM events WHERE id = ?`
	qInsert = `INSERT INTO events (` + cols + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	qUpdate = `UPDATE events
	              SET name = ?, event_type = ?, event_date = ?, event_time = ?,
	                  location_name = ?, location_address = ?, description = ?, display_order = ?
	            WHERE id = ?`
	qDelete = `DELETE FROM events WHERE id = ?`
)

// Store is the sqlx-backed event repository.
type Store struct{}

// NewStore returns a Store.
func NewStore() *Store { return &Store{} }

// List returns every event in display order.
func (Store) List(ctx context.Context, q sqlx.ExtContext) ([]Event, error) {
	out := []Event{}
	if err := sqlx.SelectContext(ctx, q, &out, qList); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

// Get returns one event.
func (Store) Get(ctx context.Context, q sqlx.ExtContext, id string) (Event, error) {
	var e Event
	err := sqlx.GetContext(ctx, q, &e, qGet, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Event{}, ErrNotFound
	}
	if err != nil {
		return Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// Insert writes e.
func (Store) Insert(ctx context.Context, q sqlx.ExtContext, e Event) error {
	_, err := q.ExecContext(ctx, qInsert,
		e.ID, e.Name, e.EventType, e.EventDate, e.EventTime,
		e.LocationName, e.LocationAddress, e.Description, e.DisplayOrder, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Update rewrites the editable columns of e.
func (Store) Update(ctx context.Context, q sqlx.ExtContext, e Event) error {
	_, err := q.ExecContext(ctx, qUpdate,
		e.Name, e.EventType, e.EventDate, e.EventTime,
		e.LocationName, e.LocationAddress, e.Description, e.DisplayOrder, e.ID)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// Delete removes the event with id.
func (Store) Delete(ctx context.Context, q sqlx.ExtContext, id string) error {
	res, err := q.ExecContext(ctx, qDelete, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
