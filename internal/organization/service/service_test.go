package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/internal/organization/domain"
	"github.com/notifycar/notifycar/internal/organization/repository"
	userdomain "github.com/notifycar/notifycar/internal/user/domain"
	userrepo "github.com/notifycar/notifycar/internal/user/repository"
	userservice "github.com/notifycar/notifycar/internal/user/service"
	"github.com/notifycar/notifycar/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&domain.Organization{}, &userdomain.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	users := userservice.New(zap.NewNop(), userrepo.New(dbConn), node, nil)
	return New(zap.NewNop(), repository.New(dbConn), users, node), dbConn
}

func TestCreateGeneratesSlugAndToken(t *testing.T) {
	svc, _ := newTestService(t)

	org, err := svc.Create(context.Background(), domain.CreateRequest{
		Name: "Flota Bogotá",
		Type: domain.TypeFleet,
	})
	if err != nil {
		t.Fatalf("failed to create org: %v", err)
	}
	if org.Slug != "flota-bogota" {
		t.Fatalf("expected slug flota-bogota, got %s", org.Slug)
	}
	if org.PublicToken == "" {
		t.Fatal("expected public token")
	}
	if !org.UseGlobalTemplates {
		t.Fatal("expected global templates enabled by default")
	}
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), domain.CreateRequest{
		Name: "Acme",
		Type: "CARTEL",
	})
	if err != domain.ErrInvalidType {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestCreateSeedsOperatorAccount(t *testing.T) {
	svc, dbConn := newTestService(t)

	org, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:             "Acme Fleet",
		Type:             domain.TypeFleet,
		OperatorEmail:    "ops@acme.example",
		OperatorPassword: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to create org: %v", err)
	}

	var operator userdomain.User
	if err := dbConn.Where("email = ?", "ops@acme.example").First(&operator).Error; err != nil {
		t.Fatalf("expected seeded operator: %v", err)
	}
	if operator.Role != userdomain.RoleCorporate {
		t.Fatalf("expected CORPORATE role, got %s", operator.Role)
	}
	if operator.OrgID == nil || *operator.OrgID != org.ID {
		t.Fatal("expected operator scoped to the new org")
	}
}

func TestRotatePublicToken(t *testing.T) {
	svc, _ := newTestService(t)

	org, err := svc.Create(context.Background(), domain.CreateRequest{
		Name: "Zona Azul Centro",
		Type: domain.TypeBlueZone,
	})
	if err != nil {
		t.Fatalf("failed to create org: %v", err)
	}

	rotated, err := svc.RotatePublicToken(context.Background(), org.ID)
	if err != nil {
		t.Fatalf("failed to rotate token: %v", err)
	}
	if rotated.PublicToken == org.PublicToken {
		t.Fatal("expected a new public token")
	}

	if _, err := svc.GetByPublicToken(context.Background(), org.PublicToken); err != domain.ErrNotFound {
		t.Fatalf("expected old token invalid, got %v", err)
	}
	found, err := svc.GetByPublicToken(context.Background(), rotated.PublicToken)
	if err != nil {
		t.Fatalf("expected new token valid: %v", err)
	}
	if found.ID != org.ID {
		t.Fatal("expected same org behind new token")
	}
}

func TestInactiveOrgHiddenFromPublicToken(t *testing.T) {
	svc, _ := newTestService(t)

	org, err := svc.Create(context.Background(), domain.CreateRequest{
		Name: "Parqueadero Norte",
		Type: domain.TypeParking,
	})
	if err != nil {
		t.Fatalf("failed to create org: %v", err)
	}

	inactive := false
	if _, err := svc.Update(context.Background(), org.ID, domain.UpdateRequest{Active: &inactive}); err != nil {
		t.Fatalf("failed to deactivate: %v", err)
	}

	if _, err := svc.GetByPublicToken(context.Background(), org.PublicToken); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound for inactive org, got %v", err)
	}
}

func TestDuplicateNameGetsDistinctSlug(t *testing.T) {
	svc, _ := newTestService(t)

	first, err := svc.Create(context.Background(), domain.CreateRequest{Name: "Acme", Type: domain.TypeFleet})
	if err != nil {
		t.Fatalf("failed to create first org: %v", err)
	}
	second, err := svc.Create(context.Background(), domain.CreateRequest{Name: "Acme", Type: domain.TypeFleet})
	if err != nil {
		t.Fatalf("failed to create second org: %v", err)
	}
	if first.Slug == second.Slug {
		t.Fatalf("expected distinct slugs, both %s", first.Slug)
	}
}

func TestCreateOptedOutOrgStoresFlag(t *testing.T) {
	svc, dbConn := newTestService(t)

	optOut := false
	org, err := svc.Create(context.Background(), domain.CreateRequest{
		Name:               "Zona Azul Centro",
		Type:               domain.TypeBlueZone,
		UseGlobalTemplates: &optOut,
	})
	if err != nil {
		t.Fatalf("failed to create org: %v", err)
	}

	var stored domain.Organization
	if err := dbConn.First(&stored, "id = ?", org.ID).Error; err != nil {
		t.Fatalf("failed to load org: %v", err)
	}
	if stored.UseGlobalTemplates {
		t.Fatal("expected opt-out to survive the insert")
	}

	got, err := svc.Get(context.Background(), org.ID)
	if err != nil {
		t.Fatalf("failed to get org: %v", err)
	}
	if got.UseGlobalTemplates {
		t.Fatal("expected UseGlobalTemplates false after reload")
	}
}
