package service

import (
	"context"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/internal/vehicle/domain"
	"github.com/notifycar/notifycar/internal/vehicle/repository"
	"github.com/notifycar/notifycar/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&domain.Vehicle{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	return New(zap.NewNop(), repository.New(dbConn), node, nil)
}

func TestCreateNormalizesPlate(t *testing.T) {
	svc := newTestService(t)

	vehicle, err := svc.Create(context.Background(), domain.CreateRequest{Plate: " abc 123 "})
	if err != nil {
		t.Fatalf("failed to create vehicle: %v", err)
	}
	if vehicle.Plate != "ABC123" {
		t.Fatalf("expected plate ABC123, got %s", vehicle.Plate)
	}
	if vehicle.Type != domain.TypeCar {
		t.Fatalf("expected default type CAR, got %s", vehicle.Type)
	}
}

func TestCreateDuplicatePlateCaseInsensitive(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Create(context.Background(), domain.CreateRequest{Plate: "XYZ789"}); err != nil {
		t.Fatalf("failed to create vehicle: %v", err)
	}
	if _, err := svc.Create(context.Background(), domain.CreateRequest{Plate: "xyz789"}); err != domain.ErrPlateTaken {
		t.Fatalf("expected ErrPlateTaken, got %v", err)
	}
}

func TestSearchUnknownPlate(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.Search(context.Background(), "NOPE01")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if result.Found {
		t.Fatal("expected found=false")
	}
	if result.Vehicle != nil {
		t.Fatal("expected no vehicle payload")
	}
}

func TestSearchHidesOwnerContact(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Create(context.Background(), domain.CreateRequest{
		Plate:      "DEF456",
		Brand:      "Renault",
		OwnerName:  "Alice",
		OwnerPhone: "3001234567",
	}); err != nil {
		t.Fatalf("failed to create vehicle: %v", err)
	}

	result, err := svc.Search(context.Background(), "def456")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !result.Found {
		t.Fatal("expected found=true")
	}
	if result.Vehicle.Plate != "DEF456" || result.Vehicle.Brand != "Renault" {
		t.Fatalf("unexpected vehicle payload: %+v", result.Vehicle)
	}
}

func TestImportCSVCountsDuplicates(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Create(context.Background(), domain.CreateRequest{Plate: "AAA111"}); err != nil {
		t.Fatalf("failed to seed vehicle: %v", err)
	}

	csvBody := strings.Join([]string{
		"Plate,Brand,Model,Color,Owner,Phone",
		`BBB222,Mazda,3,"Azul, metalizado",Bob,3000000001`,
		"AAA111,Kia,Rio,Rojo,Carl,3000000002",
		"CCC333,Chevrolet,Onix,Blanco,Dana,3000000003",
		",,,,,",
	}, "\n")

	result, err := svc.ImportCSV(context.Background(), nil, strings.NewReader(csvBody))
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.Success != 2 {
		t.Fatalf("expected 2 successes, got %d", result.Success)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(result.Errors), result.Errors)
	}

	search, err := svc.Search(context.Background(), "BBB222")
	if err != nil || !search.Found {
		t.Fatalf("expected imported vehicle findable, got %v %v", search, err)
	}
	if search.Vehicle.Color != "Azul, metalizado" {
		t.Fatalf("expected quoted field preserved, got %q", search.Vehicle.Color)
	}
}

func TestImportCSVMissingPlateHeader(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.ImportCSV(context.Background(), nil, strings.NewReader("brand,model\nMazda,3\n"))
	if err == nil {
		t.Fatal("expected error for missing plate header")
	}
}
