// internal/core/context.go
//
// Process-wide dependency bundle.
//
// Context
// -------
// cmd/web and cmd/seed build one *core.Env at startup and hand it to every
// service constructor.  It bundles:
//
//   - DB     - pooled *sqlx.DB (MySQL or SQLite).
//   - Log    - root sugared logger; request code prefers logger.FromContext.
//   - Config - immutable settings snapshot.
//   - Now    - clock used for expiry checks and timestamps.
//
// Notes
// -----
// • Services copy what they need out of Env; nothing reads it per request.
// • Tests build Env by hand with a fixed clock.
// • Oxford commas, two spaces after periods.
package core

import (
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/guestlist/internal/config"
)

// Clock returns the current time.  Always UTC.
type Clock func() time.Time

// SystemClock is the production clock.
func SystemClock() time.Time { return time.Now().UTC() }

// Env is passed to service constructors.
type Env struct {
	DB     *sqlx.DB
	Log    *zap.SugaredLogger
	Config *config.Config
	Now    Clock
}

// Clock returns e.Now, falling back to SystemClock.
func (e *Env) Clock() Clock {
	if e == nil || e.Now == nil {
		return SystemClock
	}
	return e.Now
}
