package admin

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/yanizio/guestlist/internal/apperr"
	"github.com/yanizio/guestlist/internal/session"
)

/*──────────────────────────── fakes ────────────────────────────────────────*/

type memRepo struct{ admins map[string]Admin }

func (m *memRepo) ByUsername(_ context.Context, _ sqlx.ExtContext, username string) (Admin, error) {
	for _, a := range m.admins {
		if a.Username == username {
			return a, nil
		}
	}
	return Admin{}, errNoRow
}

func (m *memRepo) ByID(_ context.Context, _ sqlx.ExtContext, id string) (Admin, error) {
	if a, ok := m.admins[id]; ok {
		return a, nil
	}
	return Admin{}, errNoRow
}

func (m *memRepo) Insert(_ context.Context, _ sqlx.ExtContext, a Admin) error {
	m.admins[a.ID] = a
	return nil
}

func (m *memRepo) SetPasswordHash(_ context.Context, _ sqlx.ExtContext, id, hash string) error {
	a := m.admins[id]
	a.PasswordHash = hash
	m.admins[id] = a
	return nil
}

type fakeSessions map[string]session.Session

func (f fakeSessions) Lookup(_ context.Context, token string) (session.Session, error) {
	s, ok := f[token]
	if !ok {
		return session.Session{}, apperr.ErrUnauthenticated
	}
	return s, nil
}

func (f fakeSessions) Upgrade(_ context.Context, token, adminID string) (session.Session, error) {
	s, ok := f[token]
	if !ok || s.Kind() != session.KindAdminPending {
		return session.Session{}, apperr.ErrUnauthenticated
	}
	s.Principal = session.AdminPrincipal{AdminID: adminID}
	f[token] = s
	return s, nil
}

func hash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

func newTestService(t *testing.T) (*Service, *memRepo, fakeSessions) {
	t.Helper()
	repo := &memRepo{admins: map[string]Admin{
		"a1": {ID: "a1", Username: "admin", PasswordHash: hash(t, "correct-horse")},
	}}
	sess := fakeSessions{
		"pending": {ID: "s1", Token: "pending", Principal: session.AdminPendingPrincipal{}},
		"guest":   {ID: "s2", Token: "guest", Principal: session.GuestPrincipal{GuestID: "g1"}},
	}
	svc := NewService(nil, repo, sess, Options{MinPasswordLength: 8, BcryptCost: bcrypt.MinCost},
		func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) })
	return svc, repo, sess
}

/*──────────────────────────── login ────────────────────────────────────────*/

func TestLogin_UpgradesSameSession(t *testing.T) {
	svc, _, sess := newTestService(t)

	a, err := svc.Login(context.Background(), "pending", "admin", "correct-horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if a.ID != "a1" {
		t.Fatalf("admin = %+v", a)
	}
	if got := sess["pending"]; got.Kind() != session.KindAdmin || got.Token != "pending" {
		t.Fatalf("session after login = %+v", got)
	}
}

func TestLogin_WrongPasswordStaysPending(t *testing.T) {
	svc, _, sess := newTestService(t)

	_, err := svc.Login(context.Background(), "pending", "admin", "wrong")
	if !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want invalid credentials", err)
	}
	if sess["pending"].Kind() != session.KindAdminPending {
		t.Fatalf("session changed after failed login")
	}
}

func TestLogin_UnknownUserSameError(t *testing.T) {
	svc, _, sess := newTestService(t)

	_, err := svc.Login(context.Background(), "pending", "nobody", "correct-horse")
	if !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want invalid credentials", err)
	}
	if sess["pending"].Kind() != session.KindAdminPending {
		t.Fatalf("session changed after failed login")
	}
}

func TestLogin_RequiresPendingSession(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, tok := range []string{"guest", "missing", ""} {
		if _, err := svc.Login(context.Background(), tok, "admin", "correct-horse"); !errors.Is(err, apperr.ErrUnauthenticated) {
			t.Errorf("Login(token=%q) = %v, want unauthenticated", tok, err)
		}
	}
}

/*──────────────────────────── passwords ────────────────────────────────────*/

func TestChangePassword(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, "a1", "wrong", "brand-new-pass")
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.KindValidation || ae.Field != "current_password" {
		t.Fatalf("wrong current = %v", err)
	}

	err = svc.ChangePassword(ctx, "a1", "correct-horse", "short")
	if !errors.As(err, &ae) || ae.Field != "new_password" {
		t.Fatalf("short new = %v", err)
	}

	if err := svc.ChangePassword(ctx, "a1", "correct-horse", "brand-new-pass"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(repo.admins["a1"].PasswordHash), []byte("brand-new-pass")) != nil {
		t.Fatalf("new hash does not verify")
	}
}

func TestNewService_HashesDummyUpFront(t *testing.T) {
	svc, _, _ := newTestService(t)
	cost, err := bcrypt.Cost(svc.dummyHash)
	if err != nil {
		t.Fatalf("dummy hash: %v", err)
	}
	if cost != bcrypt.MinCost {
		t.Fatalf("dummy cost = %d, want %d", cost, bcrypt.MinCost)
	}

	bad := NewService(nil, &memRepo{}, fakeSessions{}, Options{BcryptCost: bcrypt.MaxCost + 1}, nil)
	if cost, err := bcrypt.Cost(bad.dummyHash); err != nil || cost != bcrypt.DefaultCost {
		t.Fatalf("fallback dummy cost = %d, %v", cost, err)
	}
}

/*──────────────────────────── accounts ─────────────────────────────────────*/

// newTxService is newTestService over a sqlmock handle, for paths that
// open a transaction.
func newTxService(t *testing.T) (*Service, *memRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	_, repo, sess := newTestService(t)
	svc := NewService(sqlx.NewDb(db, "sqlmock"), repo, sess,
		Options{MinPasswordLength: 8, BcryptCost: bcrypt.MinCost}, nil)
	return svc, repo, mock
}

func TestCreate(t *testing.T) {
	svc, repo, mock := newTxService(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectCommit()
	a, err := svc.Create(ctx, "planner", "long-enough-pw")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if repo.admins[a.ID].Username != "planner" {
		t.Fatalf("admin not stored")
	}

	mock.ExpectBegin()
	mock.ExpectRollback()
	if _, err := svc.Create(ctx, "admin", "long-enough-pw"); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate = %v, want conflict", err)
	}
	if _, err := svc.Create(ctx, " ", "long-enough-pw"); err == nil {
		t.Fatalf("blank username accepted")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestProvision_RollsBackWhenAlsoFails(t *testing.T) {
	svc, _, mock := newTxService(t)

	mock.ExpectBegin()
	mock.ExpectRollback()
	taken := apperr.Conflict("invite_code", "Invite code already exists")
	_, err := svc.Provision(context.Background(), "planner", "long-enough-pw", func(*sqlx.Tx) error {
		return taken
	})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

/*──────────────────────────── store ────────────────────────────────────────*/

func TestStore_ByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	xdb := sqlx.NewDb(db, "sqlmock")
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(qByUsername)).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow("a1", "admin", "$2a$04$hash", ts))

	a, err := Store{}.ByUsername(context.Background(), xdb, "admin")
	if err != nil {
		t.Fatalf("ByUsername: %v", err)
	}
	if a.ID != "a1" || a.PasswordHash != "$2a$04$hash" {
		t.Fatalf("admin = %+v", a)
	}

	mock.ExpectQuery(regexp.QuoteMeta(qByUsername)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}))
	if _, err := (Store{}).ByUsername(context.Background(), xdb, "ghost"); !errors.Is(err, errNoRow) {
		t.Fatalf("missing = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestStore_SetPasswordHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(qSetHash)).
		WithArgs("newhash", "a1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := (Store{}).SetPasswordHash(context.Background(), sqlx.NewDb(db, "sqlmock"), "a1", "newhash"); err != nil {
		t.Fatalf("SetPasswordHash: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestGeneratePassword(t *testing.T) {
	pw, err := GeneratePassword(GeneratedPasswordLength)
	if err != nil {
		t.Fatalf("GeneratePassword: %v", err)
	}
	if len(pw) != GeneratedPasswordLength {
		t.Fatalf("len = %d", len(pw))
	}
	for _, r := range pw {
		if !strings.ContainsRune(passwordAlphabet, r) {
			t.Fatalf("unexpected rune %q in %q", r, pw)
		}
	}
}
