package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/internal/template/domain"
	"github.com/notifycar/notifycar/internal/template/repository"
	"github.com/notifycar/notifycar/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&domain.Template{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	return New(zap.NewNop(), repository.New(dbConn), node)
}

func mustCreate(t *testing.T, svc domain.Service, req domain.CreateRequest) *domain.Template {
	t.Helper()
	template, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("failed to create template: %v", err)
	}
	return template
}

func TestResolveUnionsGlobalAndOrg(t *testing.T) {
	svc := newTestService(t)
	node, _ := snowflake.NewNode(2)
	orgID := node.Generate()

	globalAll := mustCreate(t, svc, domain.CreateRequest{Title: "Luces encendidas", Body: "Dejaste las luces encendidas", VehicleType: domain.ApplyAll})
	orgCar := mustCreate(t, svc, domain.CreateRequest{Title: "Mal parqueado", Body: "Su vehículo obstruye la salida", VehicleType: domain.ApplyCar, OrgID: &orgID})
	mustCreate(t, svc, domain.CreateRequest{Title: "Casco olvidado", Body: "Olvidó su casco", VehicleType: domain.ApplyMotorcycle, OrgID: &orgID})

	templates, err := svc.Resolve(context.Background(), domain.ResolveRequest{
		VehicleType: "CAR",
		OrgID:       &orgID,
		UseGlobal:   true,
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}
	ids := map[snowflake.ID]bool{}
	for _, tpl := range templates {
		ids[tpl.ID] = true
	}
	if !ids[globalAll.ID] || !ids[orgCar.ID] {
		t.Fatalf("expected global ALL and org CAR templates, got %v", ids)
	}
}

func TestResolveExcludesGlobalWhenOptedOut(t *testing.T) {
	svc := newTestService(t)
	node, _ := snowflake.NewNode(2)
	orgID := node.Generate()

	mustCreate(t, svc, domain.CreateRequest{Title: "Global", Body: "Mensaje global", VehicleType: domain.ApplyAll})
	own := mustCreate(t, svc, domain.CreateRequest{Title: "Propio", Body: "Mensaje propio", VehicleType: domain.ApplyAll, OrgID: &orgID})

	templates, err := svc.Resolve(context.Background(), domain.ResolveRequest{
		VehicleType: "CAR",
		OrgID:       &orgID,
		UseGlobal:   false,
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	for _, tpl := range templates {
		if tpl.OrgID == nil {
			t.Fatalf("expected zero global templates, got %s", tpl.Title)
		}
	}
	if len(templates) != 1 || templates[0].ID != own.ID {
		t.Fatalf("expected only the org template, got %d", len(templates))
	}
}

func TestResolveElectricOnlyForElectricVehicles(t *testing.T) {
	svc := newTestService(t)

	electric := mustCreate(t, svc, domain.CreateRequest{Title: "Cargador", Body: "Desconecte el cargador", VehicleType: domain.ApplyElectric})

	plain, err := svc.Resolve(context.Background(), domain.ResolveRequest{VehicleType: "CAR", UseGlobal: true})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	for _, tpl := range plain {
		if tpl.ID == electric.ID {
			t.Fatal("electric template resolved for a non-electric vehicle")
		}
	}

	ev, err := svc.Resolve(context.Background(), domain.ResolveRequest{VehicleType: "CAR", IsElectric: true, UseGlobal: true})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	found := false
	for _, tpl := range ev {
		if tpl.ID == electric.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("expected electric template for an electric vehicle")
	}
}

func TestResolveSkipsInactive(t *testing.T) {
	svc := newTestService(t)

	template := mustCreate(t, svc, domain.CreateRequest{Title: "Viejo", Body: "Mensaje retirado", VehicleType: domain.ApplyAll})
	inactive := false
	if _, err := svc.Update(context.Background(), template.ID, domain.UpdateRequest{Active: &inactive}); err != nil {
		t.Fatalf("failed to deactivate: %v", err)
	}

	templates, err := svc.Resolve(context.Background(), domain.ResolveRequest{VehicleType: "CAR", UseGlobal: true})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if len(templates) != 0 {
		t.Fatalf("expected no templates, got %d", len(templates))
	}
}
