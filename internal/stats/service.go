// internal/stats/service.go
//
// Dashboard statistics.
//
// Context
// -------
// Every GET /admin/dashboard/stats recomputes the figures; nothing is
// cached between requests.  The three independent queries run
// concurrently under an errgroup, and overlapping requests share one
// computation through singleflight.
//
// Notes
// -----
// • The queries do not share a transaction.  A write landing mid-compute
//   may show up in one figure and not another.
// • Oxford commas, two spaces after periods.
package stats

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/guestlist/internal/apperr"
)

// DefaultRecentLimit is used when the configured limit is not positive.
const DefaultRecentLimit = 5

// computeTimeout bounds a shared computation once it is detached from the
// first caller's context.
const computeTimeout = 10 * time.Second

// Stats is the dashboard payload.
type Stats struct {
	TotalGuests            int      `json:"total_guests"`
	TotalExpectedAttendees int      `json:"total_expected_attendees"`
	RsvpCount              int      `json:"rsvp_count"`
	PendingRsvps           int      `json:"pending_rsvps"`
	AttendingCount         int      `json:"attending_count"`
	NotAttendingCount      int      `json:"not_attending_count"`
	RecentRsvps            []Recent `json:"recent_rsvps"`
}

// Repository is the query surface the service needs.  *Store satisfies it.
type Repository interface {
	Counts(ctx context.Context, q sqlx.QueryerContext) (counts, error)
	Attendance(ctx context.Context, q sqlx.QueryerContext) (attendance, error)
	Recent(ctx context.Context, q sqlx.QueryerContext, limit int) ([]Recent, error)
}

// Service computes dashboard stats.
type Service struct {
	db     sqlx.QueryerContext
	repo   Repository
	recent int
	sfg    singleflight.Group
}

// NewService wires the stats service.
func NewService(db sqlx.QueryerContext, repo Repository, recentLimit int) *Service {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &Service{db: db, repo: repo, recent: recentLimit}
}

// Compute returns fresh dashboard figures.
func (s *Service) Compute(ctx context.Context) (Stats, error) {
	v, err, _ := s.sfg.Do("stats", func() (interface{}, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), computeTimeout)
		defer cancel()
		return s.compute(cctx)
	})
	if err != nil {
		return Stats{}, apperr.Internal(err)
	}
	return v.(Stats), nil
}

func (s *Service) compute(ctx context.Context) (Stats, error) {
	var (
		c      counts
		a      attendance
		recent []Recent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		c, err = s.repo.Counts(gctx, s.db)
		return err
	})
	g.Go(func() error {
		var err error
		a, err = s.repo.Attendance(gctx, s.db)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.repo.Recent(gctx, s.db, s.recent)
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	return Stats{
		TotalGuests:            c.TotalGuests,
		TotalExpectedAttendees: c.TotalExpectedAttendees,
		RsvpCount:              c.RsvpCount,
		PendingRsvps:           c.TotalGuests - c.RsvpCount,
		AttendingCount:         a.Attending,
		NotAttendingCount:      a.NotAttending,
		RecentRsvps:            recent,
	}, nil
}
