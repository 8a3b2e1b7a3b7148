package database

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

func TestMySQLDSN_SplicesPasswordAndParseTime(t *testing.T) {
	out, err := mysqlDSN("app@tcp(127.0.0.1:3306)/guestlist", "s3cret")
	if err != nil {
		t.Fatalf("mysqlDSN: %v", err)
	}
	cfg, err := mysql.ParseDSN(out)
	if err != nil {
		t.Fatalf("re-parse %q: %v", out, err)
	}
	if cfg.Passwd != "s3cret" {
		t.Errorf("password = %q", cfg.Passwd)
	}
	if !cfg.ParseTime {
		t.Errorf("parseTime not forced in %q", out)
	}
	if cfg.DBName != "guestlist" || cfg.Addr != "127.0.0.1:3306" {
		t.Errorf("unexpected cfg: %+v", cfg)
	}
}

func TestMySQLDSN_KeepsExistingPassword(t *testing.T) {
	out, err := mysqlDSN("app:inline@tcp(db:3306)/guestlist", "")
	if err != nil {
		t.Fatalf("mysqlDSN: %v", err)
	}
	cfg, _ := mysql.ParseDSN(out)
	if cfg.Passwd != "inline" {
		t.Errorf("password = %q, want inline", cfg.Passwd)
	}
}

func TestSQLiteDSN(t *testing.T) {
	cases := map[string]string{
		"guestlist.db":          "guestlist.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite",
		"guestlist.db?mode=rwc": "guestlist.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite",
		"x.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(100)&_time_format=sqlite": "x.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(100)&_time_format=sqlite",
	}
	for in, want := range cases {
		if got := sqliteDSN(in); got != want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildDSN_UnknownDriver(t *testing.T) {
	if _, err := buildDSN(Options{Driver: "postgres", DSN: "x"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestWithTx_Commit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	xdb := sqlx.NewDb(db, "sqlmock")

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM sessions").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = WithTx(context.Background(), xdb, func(tx *sqlx.Tx) error {
		_, err := tx.Exec("DELETE FROM sessions")
		return err
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	xdb := sqlx.NewDb(db, "sqlmock")

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err = WithTx(context.Background(), xdb, func(*sqlx.Tx) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSplitStatements(t *testing.T) {
	script := upSection(`
-- +migrate Up
CREATE TABLE a (
    id INT
);
-- comment
CREATE INDEX i ON a (id);

-- +migrate Down
DROP TABLE a;
`)
	stmts := splitStatements(script)
	if len(stmts) != 2 {
		t.Fatalf("got %d statements: %q", len(stmts), stmts)
	}
	if !strings.HasPrefix(stmts[0], "CREATE TABLE a") || strings.HasSuffix(stmts[0], ";") {
		t.Errorf("stmt[0] = %q", stmts[0])
	}
	if stmts[1] != "CREATE INDEX i ON a (id)" {
		t.Errorf("stmt[1] = %q", stmts[1])
	}
}

func TestMigrate_SQLiteSchemaCascades(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, Options{Driver: DriverSQLite, DSN: ":memory:", MaxOpen: 1, MaxIdle: 1})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := Migrate(ctx, db, DriverSQLite); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if err := Migrate(ctx, db, DriverSQLite); err != nil {
		t.Fatalf("second Migrate must be a no-op: %v", err)
	}

	mustExec := func(q string, args ...any) {
		t.Helper()
		if _, err := db.ExecContext(ctx, q, args...); err != nil {
			t.Fatalf("%s: %v", q, err)
		}
	}
	mustExec(`INSERT INTO guests (id, name, party_size, created_at) VALUES ('g1', 'Smith Family', 4, '2024-01-01 00:00:00')`)
	mustExec(`INSERT INTO invite_codes (id, code, code_type, guest_id, created_at) VALUES ('c1', 'SMITH2024', 'guest', 'g1', '2024-01-01 00:00:00')`)

	if _, err := db.ExecContext(ctx,
		`INSERT INTO invite_codes (id, code, code_type, guest_id, created_at) VALUES ('c2', 'SMITH2024', 'admin', NULL, '2024-01-01 00:00:00')`,
	); err == nil {
		t.Fatalf("duplicate invite code accepted")
	}

	mustExec(`DELETE FROM guests WHERE id = 'g1'`)

	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM invite_codes`); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("invite codes left after guest delete: %d", n)
	}
}

func TestMySQLMigrations_CodesAndTokensCompareBinary(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations/mysql")
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var up []string
	for _, e := range entries {
		b, err := migrationFS.ReadFile("migrations/mysql/" + e.Name())
		if err != nil {
			t.Fatalf("ReadFile %s: %v", e.Name(), err)
		}
		up = append(up, splitStatements(upSection(string(b)))...)
	}

	for _, want := range []string{
		"ALTER TABLE invite_codes MODIFY code VARCHAR(32) CHARACTER SET ascii COLLATE ascii_bin NOT NULL",
		"ALTER TABLE sessions MODIFY token CHAR(64) CHARACTER SET ascii COLLATE ascii_bin NOT NULL",
	} {
		found := false
		for _, stmt := range up {
			found = found || stmt == want
		}
		if !found {
			t.Errorf("no migration runs %q", want)
		}
	}
}
