// internal/requestinfo/requestinfo.go
//
// Client fingerprint for audit logging.
//
// Context
// -------
// Invite-code exchanges and admin logins are the only security-relevant
// events guestlist records.  Each of those log lines carries who appeared
// to be knocking: browser family, OS, device class, bot flag, client IP,
// and, when a GeoLite2 database is configured, country and city.
//
// Notes
// -----
// • Values are plain strings and one net.IP, safe to log as-is.
// • The MaxMind reader is process-wide and read-only after InitGeo.
// • Oxford commas, two spaces after periods.

package requestinfo

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

/*──────────────────────────── types ────────────────────────────────────────*/

// Client describes the caller's user agent.
type Client struct {
	Browser string // "Chrome", "Firefox", "Safari"
	OS      string // "macOS", "Windows", "iOS"
	Device  string // "Desktop", "Phone", "Tablet"
	Bot     bool
	Lang    string // first Accept-Language tag, lower-cased
}

// Location is a best-effort GeoLite2 match for IP.
type Location struct {
	IP      net.IP
	Country string // ISO code
	City    string
}

// RequestInfo is attached to the request context by Enrich.
type RequestInfo struct {
	Client   Client
	Location Location
}

// Fields flattens info into zap key/value pairs.  A nil receiver yields
// none, so handlers can call it without checking that Enrich ran.
func (info *RequestInfo) Fields() []any {
	if info == nil {
		return nil
	}
	fs := []any{
		"ip", info.Location.IP.String(),
		"browser", info.Client.Browser,
		"os", info.Client.OS,
		"device", info.Client.Device,
		"bot", info.Client.Bot,
	}
	if info.Location.Country != "" {
		fs = append(fs, "country", info.Location.Country, "city", info.Location.City)
	}
	return fs
}

type ctxKey struct{}

// FromContext returns the value stored by Enrich, or nil.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

/*──────────────────────────── GeoLite2 ─────────────────────────────────────*/

var geoReader *geoip2.Reader

// InitGeo opens the GeoLite2-City database.  An empty path leaves lookups
// disabled.
func InitGeo(dbPath string) error {
	if dbPath == "" {
		return nil
	}
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return fmt.Errorf("requestinfo: open GeoLite2 DB: %w", err)
	}
	geoReader = r
	return nil
}

// CloseGeo releases the reader, if any.
func CloseGeo() {
	if geoReader != nil {
		_ = geoReader.Close()
		geoReader = nil
	}
}

func locate(ip net.IP) Location {
	loc := Location{IP: ip}
	if geoReader == nil || ip == nil {
		return loc
	}
	rec, err := geoReader.City(ip)
	if err != nil {
		return loc
	}
	loc.Country = rec.Country.IsoCode
	loc.City = rec.City.Names["en"]
	return loc
}

/*──────────────────────────── user agent ───────────────────────────────────*/

var devices = map[uasurfer.DeviceType]string{
	uasurfer.DeviceComputer: "Desktop",
	uasurfer.DevicePhone:    "Phone",
	uasurfer.DeviceTablet:   "Tablet",
	uasurfer.DeviceConsole:  "Console",
	uasurfer.DeviceWearable: "Wearable",
	uasurfer.DeviceTV:       "TV",
}

func parseClient(userAgent, acceptLang string) Client {
	u := uasurfer.Parse(userAgent)

	osName := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if osName == "MacOSX" {
		osName = "macOS"
	}
	device, ok := devices[u.DeviceType]
	if !ok {
		device = "Unknown"
	}
	return Client{
		Browser: strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		OS:      osName,
		Device:  device,
		Bot:     u.IsBot(),
		Lang:    firstLang(acceptLang),
	}
}

// firstLang returns the first tag of an Accept-Language list.
func firstLang(al string) string {
	tag, _, _ := strings.Cut(al, ",")
	tag, _, _ = strings.Cut(tag, ";")
	return strings.ToLower(strings.TrimSpace(tag))
}
