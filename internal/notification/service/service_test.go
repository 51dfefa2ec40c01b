package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/notifycar/notifycar/internal/config"
	"github.com/notifycar/notifycar/internal/notification/domain"
	"github.com/notifycar/notifycar/internal/notification/repository"
	orgdomain "github.com/notifycar/notifycar/internal/organization/domain"
	orgrepo "github.com/notifycar/notifycar/internal/organization/repository"
	"github.com/notifycar/notifycar/internal/providers/webhook"
	settingsdomain "github.com/notifycar/notifycar/internal/settings/domain"
	settingsrepo "github.com/notifycar/notifycar/internal/settings/repository"
	vehicledomain "github.com/notifycar/notifycar/internal/vehicle/domain"
	vehiclerepo "github.com/notifycar/notifycar/internal/vehicle/repository"
	"github.com/notifycar/notifycar/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeWebhook struct {
	lastURL     string
	lastPayload webhook.Payload
	calls       int
	err         error
}

func (f *fakeWebhook) Deliver(ctx context.Context, url string, payload webhook.Payload) error {
	f.calls++
	f.lastURL = url
	f.lastPayload = payload
	return f.err
}

type fixture struct {
	svc   domain.Service
	db    *gorm.DB
	hook  *fakeWebhook
	node  *snowflake.Node
	orgID snowflake.ID
}

func newFixture(t *testing.T, hookErr error) *fixture {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(
		&domain.Notification{},
		&vehicledomain.Vehicle{},
		&orgdomain.Organization{},
		&settingsdomain.SystemSetting{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	now := time.Now().UTC()
	org := &orgdomain.Organization{
		ID:             node.Generate(),
		Name:           "Acme Fleet",
		Slug:           "acme-fleet",
		Type:           orgdomain.TypeFleet,
		Active:         true,
		MessageWrapper: "[Acme] {{message}}",
		PublicToken:    "token-acme",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := dbConn.Create(org).Error; err != nil {
		t.Fatalf("failed to seed org: %v", err)
	}
	if err := dbConn.Create(&settingsdomain.SystemSetting{
		ID:             settingsdomain.DefaultID,
		MessageWrapper: "NotifyCar: {{message}}",
		CreatedAt:      now,
		UpdatedAt:      now,
	}).Error; err != nil {
		t.Fatalf("failed to seed settings: %v", err)
	}
	if err := dbConn.Create(&vehicledomain.Vehicle{
		ID:         node.Generate(),
		Plate:      "ABC123",
		OwnerName:  "Alice",
		OwnerPhone: "3001234567",
		Type:       vehicledomain.TypeCar,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}).Error; err != nil {
		t.Fatalf("failed to seed vehicle: %v", err)
	}

	hook := &fakeWebhook{err: hookErr}
	svc := New(Params{
		Log:      zap.NewNop(),
		Repo:     repository.New(dbConn),
		Vehicles: vehiclerepo.New(dbConn),
		Orgs:     orgrepo.New(dbConn),
		Settings: settingsrepo.New(dbConn),
		Webhook:  hook,
		Config:   config.Config{WebhookURL: "https://hooks.example/notify"},
		GenID:    node,
	})

	return &fixture{svc: svc, db: dbConn, hook: hook, node: node, orgID: org.ID}
}

func TestSendWrapsOrgThenSystem(t *testing.T) {
	f := newFixture(t, nil)

	notification, err := f.svc.Send(context.Background(), domain.SendRequest{
		Plate:   "abc123",
		Message: "Luces encendidas",
		OrgID:   &f.orgID,
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if notification.RawMessage != "Luces encendidas" {
		t.Fatalf("unexpected raw message %q", notification.RawMessage)
	}
	want := "NotifyCar: [Acme] Luces encendidas"
	if notification.Message != want {
		t.Fatalf("expected %q, got %q", want, notification.Message)
	}
	if notification.Status != domain.StatusDelivered {
		t.Fatalf("expected DELIVERED, got %s", notification.Status)
	}
}

func TestSendUnknownPlate(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Send(context.Background(), domain.SendRequest{
		Plate:   "ZZZ999",
		Message: "Hola",
	})
	if err != domain.ErrVehicleUnknown {
		t.Fatalf("expected ErrVehicleUnknown, got %v", err)
	}
}

func TestSendWebhookPayloadShape(t *testing.T) {
	f := newFixture(t, nil)

	notification, err := f.svc.Send(context.Background(), domain.SendRequest{
		Plate:   "ABC123",
		Message: "Mal parqueado",
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if f.hook.calls != 1 {
		t.Fatalf("expected 1 webhook call, got %d", f.hook.calls)
	}
	p := f.hook.lastPayload
	if p.NotificationID != notification.ID.String() {
		t.Fatalf("unexpected notification id %s", p.NotificationID)
	}
	if p.Plate != "ABC123" || p.OwnerName != "Alice" || p.PhoneNumber != "3001234567" {
		t.Fatalf("unexpected payload %+v", p)
	}
	if p.RawMessage != "Mal parqueado" || p.Message != notification.Message || p.Content != notification.Message {
		t.Fatalf("unexpected message fields %+v", p)
	}
	if _, err := time.Parse(time.RFC3339, p.Timestamp); err != nil {
		t.Fatalf("expected RFC3339 timestamp, got %q", p.Timestamp)
	}
}

func TestSendWebhookFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t, errors.New("connection refused"))

	notification, err := f.svc.Send(context.Background(), domain.SendRequest{
		Plate:   "ABC123",
		Message: "Hola",
	})
	if err != nil {
		t.Fatalf("expected success despite webhook failure, got %v", err)
	}
	if notification.Status != domain.StatusFailed {
		t.Fatalf("expected FAILED status, got %s", notification.Status)
	}

	var stored domain.Notification
	if err := f.db.Where("id = ?", notification.ID).First(&stored).Error; err != nil {
		t.Fatalf("expected persisted notification: %v", err)
	}
	if stored.Status != domain.StatusFailed {
		t.Fatalf("expected FAILED persisted, got %s", stored.Status)
	}
}

func TestSettingsWebhookURLOverride(t *testing.T) {
	f := newFixture(t, nil)

	if err := f.db.Model(&settingsdomain.SystemSetting{}).
		Where("id = ?", settingsdomain.DefaultID).
		Update("webhook_url", "https://hooks.example/override").Error; err != nil {
		t.Fatalf("failed to set override: %v", err)
	}

	if _, err := f.svc.Send(context.Background(), domain.SendRequest{
		Plate:   "ABC123",
		Message: "Hola",
	}); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if f.hook.lastURL != "https://hooks.example/override" {
		t.Fatalf("expected override url, got %s", f.hook.lastURL)
	}
}
