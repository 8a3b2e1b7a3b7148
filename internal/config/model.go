// internal/config/model.go
//
// Typed configuration model for guestlist.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                        – dotenv values,
//   • `conf/global.yaml`                          – primary static file,
//   • `GUESTLIST_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with `vault:` is resolved through the Vault
// client *before* validation, so the model never hands a Vault URI to the
// database layer.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Zero values are replaced by defaults in applyDefaults.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr      string        `koanf:"listen_addr"      validate:"required,hostname_port"`
	ForceHTTPS      bool          `koanf:"force_https"`
	InsecureCookies bool          `koanf:"insecure_cookies"` // dev only: drop the Secure flag
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"gt=0"`
}

//
// Database section
//

// Database selects the driver and connection pool.
//
// `DSN` stays in YAML so operators can change host or flags freely.  The
// password may be supplied separately (typically a `vault:` reference) and
// is spliced into the DSN at open time.
type Database struct {
	Driver   string `koanf:"driver"   validate:"required,oneof=mysql sqlite"`
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password"`
	MaxOpen  int    `koanf:"max_open" validate:"gte=1"`
	MaxIdle  int    `koanf:"max_idle" validate:"gte=0"`
	Migrate  bool   `koanf:"migrate"`
}

// Session controls token lifetime.
type Session struct {
	TTL time.Duration `koanf:"ttl" validate:"gt=0"`
}

// Auth holds password policy knobs.
type Auth struct {
	MinPasswordLength int `koanf:"min_password_length" validate:"gte=1,lte=72"`
	BcryptCost        int `koanf:"bcrypt_cost"         validate:"gte=4,lte=31"`
}

// Invite sets the generated code length.
type Invite struct {
	CodeLength int `koanf:"code_length" validate:"gte=4,lte=32"`
}

// Dashboard tunes the stats endpoint.
type Dashboard struct {
	RecentLimit int `koanf:"recent_limit" validate:"gte=1,lte=100"`
}

// Log configures the file logger.
type Log struct {
	Dir   string `koanf:"dir"`
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
}

// GeoIP points at an optional GeoLite2-City database.
type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // GUESTLIST_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads.
type Config struct {
	HTTP      HTTP      `koanf:"http"`
	Database  Database  `koanf:"database"`
	Session   Session   `koanf:"session"`
	Auth      Auth      `koanf:"auth"`
	Invite    Invite    `koanf:"invite"`
	Dashboard Dashboard `koanf:"dashboard"`
	Log       Log       `koanf:"log"`
	GeoIP     GeoIP     `koanf:"geoip"`
	Paths     Paths     `koanf:"-"`
}

// applyDefaults fills every zero-valued tunable.
func applyDefaults(c *Config) {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":3001"
	}
	if c.HTTP.RequestTimeout == 0 {
		c.HTTP.RequestTimeout = 10 * time.Second
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Database.MaxOpen == 0 {
		c.Database.MaxOpen = 15
	}
	if c.Database.MaxIdle == 0 {
		c.Database.MaxIdle = 5
	}
	if c.Session.TTL == 0 {
		c.Session.TTL = 7 * 24 * time.Hour
	}
	if c.Auth.MinPasswordLength == 0 {
		c.Auth.MinPasswordLength = 8
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 10
	}
	if c.Invite.CodeLength == 0 {
		c.Invite.CodeLength = 6
	}
	if c.Dashboard.RecentLimit == 0 {
		c.Dashboard.RecentLimit = 5
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
