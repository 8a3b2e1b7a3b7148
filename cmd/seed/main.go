// cmd/seed/main.go
//
// Operator tool for provisioning accounts outside the HTTP surface.
//
// Usage
// -----
//
//	seed [-migrate] admin <username> <admin-code>
//	seed [-migrate] guest <name> <party-size> [invite-code]
//
// `admin` generates a 16-character password, prints it once, and stores
// the admin together with the invite code that opens the login step.  Both
// rows land in one transaction; a taken code leaves no account behind.
// `guest` creates a guest and prints its invite code (generated when not
// supplied).
//
// Configuration is read exactly as cmd/web reads it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/guestlist/internal/admin"
	"github.com/yanizio/guestlist/internal/app"
	"github.com/yanizio/guestlist/internal/core"
	"github.com/yanizio/guestlist/internal/database"
	"github.com/yanizio/guestlist/internal/guest"
)

func usage() {
	fmt.Fprint(flag.CommandLine.Output(), `usage:
  seed [-migrate] admin <username> <admin-code>
  seed [-migrate] guest <name> <party-size> [invite-code]
`)
	flag.PrintDefaults()
}

func main() {
	migrate := flag.Bool("migrate", false, "apply schema migrations before seeding")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	env, closeEnv, err := app.Bootstrap(ctx, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bootstrap: %v\n", err)
		os.Exit(1)
	}
	code := run(ctx, env, *migrate, flag.Args())
	closeEnv()
	os.Exit(code)
}

func run(ctx context.Context, env *core.Env, migrate bool, args []string) int {
	if migrate && !env.Config.Database.Migrate {
		if err := database.Migrate(ctx, env.DB, env.Config.Database.Driver); err != nil {
			env.Log.Errorw("migrate", "error", err)
			return 1
		}
	}
	a := app.New(env)

	switch args[0] {
	case "admin":
		if len(args) != 3 {
			usage()
			return 2
		}
		return seedAdmin(ctx, a, args[1], args[2])
	case "guest":
		if len(args) < 3 || len(args) > 4 {
			usage()
			return 2
		}
		var code string
		if len(args) == 4 {
			code = args[3]
		}
		return seedGuest(ctx, a, args[1], args[2], code)
	default:
		usage()
		return 2
	}
}

func seedAdmin(ctx context.Context, a *app.App, username, code string) int {
	log := a.Env.Log
	password, err := admin.GeneratePassword(admin.GeneratedPasswordLength)
	if err != nil {
		log.Errorw("generate password", "error", err)
		return 1
	}
	acct, err := a.Admins.Provision(ctx, username, password, func(tx *sqlx.Tx) error {
		_, err := a.Invites.AddAdminCode(ctx, tx, code)
		return err
	})
	if err != nil {
		log.Errorw("create admin", "username", username, "code", code, "error", err)
		return 1
	}
	log.Infow("admin seeded", "admin_id", acct.ID, "username", acct.Username)

	fmt.Printf("admin:    %s\npassword: %s\ncode:     %s\n", acct.Username, password, code)
	fmt.Println("Store the password now; it is not shown again.")
	return 0
}

func seedGuest(ctx context.Context, a *app.App, name, size, code string) int {
	log := a.Env.Log
	n, err := strconv.Atoi(size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "party size %q: %v\n", size, err)
		return 2
	}
	created, err := a.Guests.Create(ctx, guest.Input{Name: name, PartySize: n}, code)
	if err != nil {
		log.Errorw("create guest", "name", name, "error", err)
		return 1
	}
	fmt.Printf("guest: %s (party of %d)\ncode:  %s\n", created.Name, created.PartySize, created.InviteCode)
	return 0
}
