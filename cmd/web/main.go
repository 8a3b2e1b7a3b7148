// cmd/web/main.go
//
// guestlist HTTP entry point.
//
// Start-up
// --------
//
//  1. Bootstrap: configuration (with Vault when VAULT_ADDR is set), daily
//     rotating logger (tees to console when running in a TTY), database
//     pool, and optional migrations.
//
//  2. Open the GeoLite2 database when geoip.db_path is configured.
//
//  3. Wire the service graph and the root router.
//
//  4. Serve until SIGINT or SIGTERM, then drain in-flight requests.
//
// Large comment blocks are framed by blank "//" lines; inline comments use
// a single "//".
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanizio/guestlist/internal/app"
	"github.com/yanizio/guestlist/internal/requestinfo"
	"github.com/yanizio/guestlist/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, closeEnv, err := app.Bootstrap(ctx, app.RunningInTTY())
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer closeEnv()
	logOut := env.Log

	//
	// ── 1.  GeoIP (optional) ────────────────────────────────────────────
	//
	if err := requestinfo.InitGeo(env.Config.GeoIP.DBPath); err != nil {
		logOut.Warnw("geoip disabled", "error", err)
	}
	defer requestinfo.CloseGeo()

	//
	// ── 2.  Services and router ─────────────────────────────────────────
	//
	a := app.New(env)
	srv := server.New(env.Config.HTTP.ListenAddr, a.Handler())

	//
	// ── 3.  Serve ───────────────────────────────────────────────────────
	//
	logOut.Infow("listening", "addr", srv.Addr, "force_https", env.Config.HTTP.ForceHTTPS)
	if err := server.Run(ctx, srv); err != nil {
		logOut.Errorw("http server", "error", err)
		closeEnv()
		os.Exit(1)
	}
	logOut.Infow("shutdown complete")
}
