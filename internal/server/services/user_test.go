package services

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/timecapsule/internal/common"
	"github.com/dmitrijs2005/timecapsule/internal/server/auth"
	"github.com/dmitrijs2005/timecapsule/internal/server/config"
	"github.com/dmitrijs2005/timecapsule/internal/server/models"
	"golang.org/x/crypto/bcrypt"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newUserService(t *testing.T, db *sql.DB, u *fakeUsersRepo) *UserService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: time.Hour,
	}
	return NewUserService(db, &fakeRepoManager{u: u}, cfg)
}

func mustHash(t *testing.T, pw string) []byte {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return h
}

func TestRegister_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	repo := &fakeUsersRepo{createOut: &models.User{ID: "42", UserName: "alice"}}
	s := newUserService(t, db, repo)

	sess, err := s.Register(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if sess.UserID != "42" || sess.AccessToken == "" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if bcrypt.CompareHashAndPassword(repo.created.PasswordHash, []byte("pw")) != nil {
		t.Fatalf("stored hash does not match password")
	}
	uid, err := auth.GetUserIDFromToken(sess.AccessToken, []byte("k"))
	if err != nil || uid != "42" {
		t.Fatalf("token does not carry user id: %q %v", uid, err)
	}
}

func TestRegister_Errors(t *testing.T) {
	db, _ := newSQLMockDB(t)

	s := newUserService(t, db, &fakeUsersRepo{createErr: common.ErrorAlreadyExists})
	if _, err := s.Register(context.Background(), "alice", "pw"); !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}

	s = newUserService(t, db, &fakeUsersRepo{createErr: errBoom{}})
	_, err := s.Register(context.Background(), "bob", "pw")
	if err == nil || !regexp.MustCompile(`error creating user: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped create error, got %v", err)
	}

	for _, in := range [][2]string{{"", "pw"}, {"  ", "pw"}, {"bob", ""}} {
		if _, err := s.Register(context.Background(), in[0], in[1]); !errors.Is(err, common.ErrorValidation) {
			t.Fatalf("Register(%q,%q): want ErrorValidation, got %v", in[0], in[1], err)
		}
	}
}

func TestRegister_PasswordTooLongIsValidation(t *testing.T) {
	db, _ := newSQLMockDB(t)
	repo := &fakeUsersRepo{createOut: &models.User{ID: "42"}}
	s := newUserService(t, db, repo)

	_, err := s.Register(context.Background(), "alice", strings.Repeat("x", 73))
	if !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("want ErrorValidation, got %v", err)
	}
	if repo.created != nil {
		t.Fatalf("user must not be stored")
	}

	if _, err := s.Register(context.Background(), "alice", strings.Repeat("x", 72)); err != nil {
		t.Fatalf("72-byte password rejected: %v", err)
	}
}

func TestLogin_Success(t *testing.T) {
	db, _ := newSQLMockDB(t)
	s := newUserService(t, db, &fakeUsersRepo{
		getOut: &models.User{ID: "u1", UserName: "alice", PasswordHash: mustHash(t, "pw")},
	})

	sess, err := s.Login(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if sess.UserID != "u1" || sess.AccessToken == "" {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestLogin_Rejections(t *testing.T) {
	db, _ := newSQLMockDB(t)

	s := newUserService(t, db, &fakeUsersRepo{
		getOut: &models.User{ID: "u1", UserName: "alice", PasswordHash: mustHash(t, "pw")},
	})
	if _, err := s.Login(context.Background(), "alice", "wrong"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("wrong password: want ErrorUnauthorized, got %v", err)
	}
	if _, err := s.Login(context.Background(), "alice", ""); !errors.Is(err, common.ErrorValidation) {
		t.Fatalf("empty password: want ErrorValidation, got %v", err)
	}

	s = newUserService(t, db, &fakeUsersRepo{getErr: common.ErrorNotFound})
	if _, err := s.Login(context.Background(), "ghost", "pw"); !errors.Is(err, common.ErrorUnauthorized) {
		t.Fatalf("unknown user: want ErrorUnauthorized, got %v", err)
	}

	s = newUserService(t, db, &fakeUsersRepo{getErr: errBoom{}})
	if _, err := s.Login(context.Background(), "alice", "pw"); !errors.Is(err, common.ErrorInternal) {
		t.Fatalf("db failure: want ErrorInternal, got %v", err)
	}
}
