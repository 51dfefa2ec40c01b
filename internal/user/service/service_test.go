package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/internal/user/domain"
	"github.com/notifycar/notifycar/internal/user/repository"
	"github.com/notifycar/notifycar/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	return New(zap.NewNop(), repository.New(dbConn), node, nil)
}

func TestRegisterCreatesDriver(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:    "Alice@Example.com",
		Password: "correct-password",
		Name:     "Alice",
	})
	if err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	if user.Role != domain.RoleDriver {
		t.Fatalf("expected DRIVER role, got %s", user.Role)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %s", user.Email)
	}
	if user.PasswordHash == nil || *user.PasswordHash == "correct-password" {
		t.Fatal("expected hashed password")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)

	req := domain.RegisterRequest{
		Email:    "bob@example.com",
		Password: "strong-password",
		Name:     "Bob",
	}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("failed to register: %v", err)
	}
	if _, err := svc.Register(context.Background(), req); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestCreateRejectsInvalidRole(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		Email:    "carol@example.com",
		Password: "strong-password",
		Name:     "Carol",
		Role:     "SUPERUSER",
	})
	if err != domain.ErrInvalidRole {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestUpdateProfileKeepsRole(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Create(context.Background(), domain.CreateRequest{
		Email:    "dave@example.com",
		Password: "strong-password",
		Name:     "Dave",
		Role:     domain.RoleOperator,
	})
	if err != nil {
		t.Fatalf("failed to create: %v", err)
	}

	name := "David"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, domain.ProfileRequest{Name: &name})
	if err != nil {
		t.Fatalf("failed to update profile: %v", err)
	}
	if updated.Name != "David" {
		t.Fatalf("expected updated name, got %s", updated.Name)
	}
	if updated.Role != domain.RoleOperator {
		t.Fatalf("expected role unchanged, got %s", updated.Role)
	}
}

func TestImportCSVReportsPerRowErrors(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email:    "taken@example.com",
		Password: "strong-password",
		Name:     "Taken",
	}); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	csvBody := strings.Join([]string{
		"Name,Email,Phone,Password",
		`"Doe, Jane",jane@example.com,3001234567,strong-password`,
		"Taken Again,taken@example.com,3000000000,strong-password",
		"No Email,,3000000001,strong-password",
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), nil, strings.NewReader(csvBody))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Success != 1 {
		t.Fatalf("expected 1 success, got %d", result.Success)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(result.Errors), result.Errors)
	}

	imported, err := svc.(*Service).repo.FindByEmail(context.Background(), "jane@example.com")
	if err != nil {
		t.Fatalf("expected imported user: %v", err)
	}
	if imported.Name != "Doe, Jane" {
		t.Fatalf("expected quoted field preserved, got %q", imported.Name)
	}
}
