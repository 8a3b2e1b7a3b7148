package stats

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/guestlist/internal/apperr"
)

type fakeRepo struct {
	c         counts
	a         attendance
	recent    []Recent
	err       error
	lastLimit int
}

func (f *fakeRepo) Counts(context.Context, sqlx.QueryerContext) (counts, error) { return f.c, f.err }

func (f *fakeRepo) Attendance(context.Context, sqlx.QueryerContext) (attendance, error) {
	return f.a, nil
}

func (f *fakeRepo) Recent(_ context.Context, _ sqlx.QueryerContext, limit int) ([]Recent, error) {
	f.lastLimit = limit
	return f.recent, nil
}

func TestCompute(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{
		c:      counts{TotalGuests: 10, TotalExpectedAttendees: 27, RsvpCount: 4},
		a:      attendance{Attending: 9, NotAttending: 3},
		recent: []Recent{{ID: "r1", GuestName: "Smith Family", RespondedAt: ts, AttendingCount: 2, NotAttendingCount: 1}},
	}
	svc := NewService(nil, repo, 0)

	st, err := svc.Compute(context.Background())
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if st.PendingRsvps != 6 || st.RsvpCount+st.PendingRsvps != st.TotalGuests {
		t.Fatalf("pending = %d, rsvp = %d, total = %d", st.PendingRsvps, st.RsvpCount, st.TotalGuests)
	}
	if st.TotalExpectedAttendees != 27 || st.AttendingCount != 9 || st.NotAttendingCount != 3 {
		t.Fatalf("stats = %+v", st)
	}
	if len(st.RecentRsvps) != 1 || st.RecentRsvps[0].GuestName != "Smith Family" {
		t.Fatalf("recent = %+v", st.RecentRsvps)
	}
	if repo.lastLimit != DefaultRecentLimit {
		t.Fatalf("limit = %d, want %d", repo.lastLimit, DefaultRecentLimit)
	}
}

func TestCompute_Error(t *testing.T) {
	svc := NewService(nil, &fakeRepo{err: errors.New("db down")}, 3)

	_, err := svc.Compute(context.Background())
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.KindInternal {
		t.Fatalf("err = %v, want internal", err)
	}
}

/*──────────────────────────── store ────────────────────────────────────────*/

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestStore_Counts(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(qCounts)).
		WillReturnRows(sqlmock.NewRows([]string{"total_guests", "total_expected_attendees", "rsvp_count"}).
			AddRow(3, 8, 1))

	c, err := Store{}.Counts(context.Background(), db)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if c != (counts{TotalGuests: 3, TotalExpectedAttendees: 8, RsvpCount: 1}) {
		t.Fatalf("counts = %+v", c)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestStore_Attendance(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(qAttendance)).
		WillReturnRows(sqlmock.NewRows([]string{"attending_count", "not_attending_count"}).AddRow(5, 2))

	a, err := Store{}.Attendance(context.Background(), db)
	if err != nil {
		t.Fatalf("Attendance: %v", err)
	}
	if a.Attending != 5 || a.NotAttending != 2 {
		t.Fatalf("attendance = %+v", a)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestStore_Recent(t *testing.T) {
	db, mock := newMock(t)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(qRecent)).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "guest_id", "guest_name", "responded_at", "attending_count", "not_attending_count",
		}).
			AddRow("r2", "g2", "Jones", ts.Add(time.Hour), 1, 0).
			AddRow("r1", "g1", "Smith Family", ts, 2, 1))

	rs, err := Store{}.Recent(context.Background(), db, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(rs) != 2 || rs[0].ID != "r2" || rs[1].NotAttendingCount != 1 {
		t.Fatalf("recent = %+v", rs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
