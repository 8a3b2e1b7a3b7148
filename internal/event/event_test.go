package event

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/guestlist/internal/apperr"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func ceremony() Input {
	return Input{
		Name:            " Ceremony ",
		EventType:       "Ceremony",
		EventDate:       "2025-09-20",
		EventTime:       "16:00",
		LocationName:    "St. Mary's",
		LocationAddress: "1 Church Lane",
		DisplayOrder:    1,
	}
}

/*──────────────────────────── service ──────────────────────────────────────*/

func TestCreate(t *testing.T) {
	db, mock := newMock(t)
	svc := NewService(db, NewStore(), func() time.Time { return t0 })

	mock.ExpectExec(regexp.QuoteMeta(qInsert)).
		WithArgs(sqlmock.AnyArg(), "Ceremony", "ceremony", "2025-09-20", "16:00",
			"St. Mary's", "1 Church Lane", nil, 1, t0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e, err := svc.Create(context.Background(), ceremony())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if e.ID == "" || e.Name != "Ceremony" || e.EventType != TypeCeremony {
		t.Fatalf("event = %+v", e)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Input)
		field  string
	}{
		"missing name":   {func(in *Input) { in.Name = "  " }, "name"},
		"bad type":       {func(in *Input) { in.EventType = "party" }, "event_type"},
		"bad date":       {func(in *Input) { in.EventDate = "20/09/2025" }, "event_date"},
		"bad time":       {func(in *Input) { in.EventTime = "4pm" }, "event_time"},
		"no location":    {func(in *Input) { in.LocationName = "" }, "location_name"},
		"long address":   {func(in *Input) { in.LocationAddress = strings.Repeat("a", 301) }, "location_address"},
		"long desc":      {func(in *Input) { d := strings.Repeat("d", 2001); in.Description = &d }, "description"},
		"negative order": {func(in *Input) { in.DisplayOrder = -1 }, "display_order"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db, mock := newMock(t)
			svc := NewService(db, NewStore(), nil)
			in := ceremony()
			tc.mutate(&in)

			_, err := svc.Create(context.Background(), in)
			var ae *apperr.Error
			if !errors.As(err, &ae) || ae.Kind != apperr.KindValidation || ae.Field != tc.field {
				t.Fatalf("err = %#v, want validation on %q", err, tc.field)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("store touched: %v", err)
			}
		})
	}
}

func TestUpdate_Missing(t *testing.T) {
	db, mock := newMock(t)
	svc := NewService(db, NewStore(), nil)

	mock.ExpectQuery(regexp.QuoteMeta(qGet)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := svc.Update(context.Background(), "nope", ceremony()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestDelete(t *testing.T) {
	db, mock := newMock(t)
	svc := NewService(db, NewStore(), nil)

	mock.ExpectExec(regexp.QuoteMeta(qDelete)).WithArgs("e1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(qDelete)).WithArgs("e1").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := svc.Delete(context.Background(), "e1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), "e1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete = %v, want not found", err)
	}
}

/*──────────────────────────── store ────────────────────────────────────────*/

func TestStore_List(t *testing.T) {
	db, mock := newMock(t)
	desc := "Dinner and dancing"
	mock.ExpectQuery(regexp.QuoteMeta(qList)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "event_type", "event_date", "event_time",
			"location_name", "location_address", "description", "display_order", "created_at",
		}).
			AddRow("e1", "Ceremony", "ceremony", "2025-09-20", "16:00", "St. Mary's", "1 Church Lane", nil, 1, t0).
			AddRow("e2", "Reception", "reception", "2025-09-20", "18:00", "The Barn", "2 Farm Road", desc, 2, t0))

	es, err := Store{}.List(context.Background(), db)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(es) != 2 || es[0].Description != nil || *es[1].Description != desc {
		t.Fatalf("events = %+v", es)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
