package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/notifycar/notifycar/internal/auth/domain"
	authrepo "github.com/notifycar/notifycar/internal/auth/repository"
	userdomain "github.com/notifycar/notifycar/internal/user/domain"
	userrepo "github.com/notifycar/notifycar/internal/user/repository"
	userservice "github.com/notifycar/notifycar/internal/user/service"
	"github.com/notifycar/notifycar/pkg/db"
	"go.uber.org/zap"
)

func newTestServices(t *testing.T) (authdomain.Service, userdomain.Service) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&userdomain.User{}, &authdomain.Session{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	users := userrepo.New(dbConn)
	authSvc := New(zap.NewNop(), users, authrepo.New(dbConn), node)
	userSvc := userservice.New(zap.NewNop(), users, node, nil)
	return authSvc, userSvc
}

func register(t *testing.T, users userdomain.Service, email, pass string) *userdomain.User {
	t.Helper()
	user, err := users.Register(context.Background(), userdomain.RegisterRequest{
		Email:    email,
		Password: pass,
		Name:     "Test User",
	})
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	return user
}

func TestLoginWrongPassword(t *testing.T) {
	authSvc, userSvc := newTestServices(t)
	register(t, userSvc, "alice@example.com", "correct-password")

	_, err := authSvc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	if err != authdomain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	authSvc, userSvc := newTestServices(t)
	created := register(t, userSvc, "bob@example.com", "strong-password")

	result, err := authSvc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "Bob@Example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}
	if result.RawToken == "" {
		t.Fatal("expected raw token")
	}
	if !result.ExpiresAt.After(time.Now()) {
		t.Fatal("expected future expiry")
	}

	user, session, err := authSvc.Authenticate(context.Background(), result.RawToken)
	if err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	if user.ID != created.ID {
		t.Fatalf("expected user %s, got %s", created.ID, user.ID)
	}
	if session.UserID != created.ID {
		t.Fatalf("expected session for user %s", created.ID)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	authSvc, userSvc := newTestServices(t)
	register(t, userSvc, "carol@example.com", "strong-password")

	result, err := authSvc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "carol@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}

	if err := authSvc.Logout(context.Background(), result.RawToken); err != nil {
		t.Fatalf("failed to logout: %v", err)
	}

	if _, _, err := authSvc.Authenticate(context.Background(), result.RawToken); err != authdomain.ErrSessionRevoked {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	authSvc, userSvc := newTestServices(t)
	created := register(t, userSvc, "dave@example.com", "strong-password")

	result, err := authSvc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "dave@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}

	if err := authSvc.ChangePassword(context.Background(), created.ID, "strong-password", "new-strong-password"); err != nil {
		t.Fatalf("failed to change password: %v", err)
	}

	if _, _, err := authSvc.Authenticate(context.Background(), result.RawToken); err != authdomain.ErrSessionRevoked {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}

	if _, err := authSvc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "dave@example.com",
		Password: "new-strong-password",
	}); err != nil {
		t.Fatalf("failed to login with new password: %v", err)
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	authSvc, userSvc := newTestServices(t)
	created := register(t, userSvc, "erin@example.com", "strong-password")

	err := authSvc.ChangePassword(context.Background(), created.ID, "wrong-password", "new-strong-password")
	if err != authdomain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
