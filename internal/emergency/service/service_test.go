package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/internal/emergency/domain"
	"github.com/notifycar/notifycar/internal/emergency/repository"
	"github.com/notifycar/notifycar/internal/reference"
	referencedomain "github.com/notifycar/notifycar/internal/reference/domain"
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
	if err := dbConn.AutoMigrate(&domain.Config{}, &referencedomain.Country{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	countries := reference.NewRepository(dbConn)
	err = countries.UpsertCountries(context.Background(), []referencedomain.Country{
		{Code: "CO", Name: "Colombia", DialCode: "+57"},
		{Code: "MX", Name: "México", DialCode: "+52"},
	})
	if err != nil {
		t.Fatalf("failed to seed countries: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	return New(zap.NewNop(), repository.New(dbConn), countries, node), dbConn
}

func TestUpsertSameCountryKeepsOneRow(t *testing.T) {
	svc, dbConn := newTestService(t)

	if _, err := svc.Upsert(context.Background(), domain.UpsertRequest{
		Country: "Colombia",
		Police:  "123",
	}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	updated, err := svc.Upsert(context.Background(), domain.UpsertRequest{
		Country: "Colombia",
		Police:  "112",
	})
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	var count int64
	if err := dbConn.Model(&domain.Config{}).Where("country = ?", "Colombia").Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one row for Colombia, got %d", count)
	}
	if updated.Police != "112" {
		t.Fatalf("expected latest police number 112, got %s", updated.Police)
	}
}

func TestListActiveHidesDisabled(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Upsert(context.Background(), domain.UpsertRequest{Country: "Colombia", Police: "123"}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	inactive := false
	if _, err := svc.Upsert(context.Background(), domain.UpsertRequest{Country: "Ecuador", Police: "911", Active: &inactive}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	active, err := svc.ListActive(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(active) != 1 || active[0].Country != "Colombia" {
		t.Fatalf("expected only Colombia active, got %v", active)
	}

	all, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 configs, got %d", len(all))
	}
}

func TestUpsertRejectsEmptyCountry(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Upsert(context.Background(), domain.UpsertRequest{Country: "  "}); err != domain.ErrInvalidCountry {
		t.Fatalf("expected ErrInvalidCountry, got %v", err)
	}
}

func TestUpsertCanonicalizesCountryCode(t *testing.T) {
	svc, _ := newTestService(t)

	cfg, err := svc.Upsert(context.Background(), domain.UpsertRequest{Country: "co", Police: "123"})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if cfg.Country != "Colombia" {
		t.Fatalf("expected code resolved to Colombia, got %s", cfg.Country)
	}

	// The canonical name and the code address the same row.
	updated, err := svc.Upsert(context.Background(), domain.UpsertRequest{Country: "Colombia", Police: "112"})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if updated.ID != cfg.ID {
		t.Fatalf("expected one row, got a second id")
	}
}

func TestUpsertRejectsUnknownCountryCode(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Upsert(context.Background(), domain.UpsertRequest{Country: "ZZ"}); err != domain.ErrInvalidCountry {
		t.Fatalf("expected ErrInvalidCountry, got %v", err)
	}
}
