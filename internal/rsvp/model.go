// internal/rsvp/model.go
//
// RSVP domain types.
//
// Context
// -------
// A guest party answers once, and may resubmit freely.  Each submission
// carries the full attendee list; the stored list is replaced wholesale.
//
//	rsvps          (id PK, guest_id UNIQUE FK, responded_at, updated_at)
//	rsvp_attendees (id PK, rsvp_id FK, name, is_attending,
//	                meal_preference NULL, dietary_restrictions NULL,
//	                is_primary)
package rsvp

import (
	"sort"
	"time"
)

// Meal preferences accepted for attending guests.
const (
	MealBeef       = "beef"
	MealChicken    = "chicken"
	MealFish       = "fish"
	MealVegetarian = "vegetarian"
	MealVegan      = "vegan"
)

var meals = map[string]bool{
	MealBeef: true, MealChicken: true, MealFish: true, MealVegetarian: true, MealVegan: true,
}

// Field limits.
const (
	maxNameLength    = 100
	maxDietaryLength = 500
)

// AttendeeInput is one submitted attendee.
type AttendeeInput struct {
	Name                string  `json:"name"`
	IsAttending         bool    `json:"is_attending"`
	MealPreference      *string `json:"meal_preference"`
	DietaryRestrictions *string `json:"dietary_restrictions"`
	IsPrimary           bool    `json:"is_primary"`
}

// Attendee is one stored attendee.
type Attendee struct {
	ID                  string  `db:"id"                   json:"id"`
	RsvpID              string  `db:"rsvp_id"              json:"-"`
	Name                string  `db:"name"                 json:"name"`
	IsAttending         bool    `db:"is_attending"         json:"is_attending"`
	MealPreference      *string `db:"meal_preference"      json:"meal_preference"`
	DietaryRestrictions *string `db:"dietary_restrictions" json:"dietary_restrictions"`
	IsPrimary           bool    `db:"is_primary"           json:"is_primary"`
}

// Rsvp is a party's stored response.
type Rsvp struct {
	ID          string     `db:"id"           json:"id"`
	GuestID     string     `db:"guest_id"     json:"guest_id"`
	RespondedAt time.Time  `db:"responded_at" json:"responded_at"`
	UpdatedAt   time.Time  `db:"updated_at"   json:"updated_at"`
	Attendees   []Attendee `db:"-"            json:"attendees"`
}

// Status is what a guest sees on the RSVP page.
type Status struct {
	GuestName    string `json:"guest_name"`
	PartySize    int    `json:"party_size"`
	HasResponded bool   `json:"has_responded"`
	Rsvp         *Rsvp  `json:"rsvp,omitempty"`
}

// Summary is the per-guest roll-up shown in admin listings.
type Summary struct {
	HasResponded      bool       `json:"has_responded"`
	RespondedAt       *time.Time `json:"responded_at"`
	AttendingCount    int        `json:"attending_count"`
	NotAttendingCount int        `json:"not_attending_count"`
}

// sortAttendees orders primary first, then by name.
func sortAttendees(as []Attendee) {
	sort.SliceStable(as, func(i, j int) bool {
		if as[i].IsPrimary != as[j].IsPrimary {
			return as[i].IsPrimary
		}
		return as[i].Name < as[j].Name
	})
}
