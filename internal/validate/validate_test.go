package validate

import (
	"errors"
	"testing"

	"github.com/yanizio/guestlist/internal/apperr"
)

type payload struct {
	Name      string `json:"name"       validate:"required,max=10"`
	PartySize int    `json:"party_size" validate:"min=1,max=20"`
	When      string `json:"event_date" validate:"datetime=2006-01-02"`
}

func TestStruct_OK(t *testing.T) {
	if err := Struct(payload{Name: "Smith", PartySize: 4, When: "2025-06-14"}); err != nil {
		t.Fatalf("Struct: %v", err)
	}
}

func TestStruct_ReportsJSONFieldName(t *testing.T) {
	cases := []struct {
		in    payload
		field string
	}{
		{payload{PartySize: 1, When: "2025-06-14"}, "name"},
		{payload{Name: "Smith", PartySize: 0, When: "2025-06-14"}, "party_size"},
		{payload{Name: "Smith", PartySize: 21, When: "2025-06-14"}, "party_size"},
		{payload{Name: "Smith", PartySize: 2, When: "06/14/2025"}, "event_date"},
	}
	for _, tc := range cases {
		err := Struct(tc.in)
		var ae *apperr.Error
		if !errors.As(err, &ae) {
			t.Fatalf("Struct(%+v) = %v, want *apperr.Error", tc.in, err)
		}
		if ae.Kind != apperr.KindValidation || ae.Field != tc.field {
			t.Errorf("Struct(%+v) kind=%v field=%q, want validation on %q", tc.in, ae.Kind, ae.Field, tc.field)
		}
		if ae.Message == "" {
			t.Errorf("empty message for %q", tc.field)
		}
	}
}

type nested struct {
	Items []item `json:"attendees" validate:"dive"`
}

type item struct {
	Name string `json:"name" validate:"required"`
}

func TestStruct_NestedPath(t *testing.T) {
	err := Struct(nested{Items: []item{{Name: "a"}, {Name: ""}}})
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("want *apperr.Error, got %v", err)
	}
	if ae.Field != "attendees[1].name" {
		t.Fatalf("field = %q", ae.Field)
	}
}
