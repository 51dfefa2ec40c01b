package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/notifycar/notifycar/internal/config"
	"github.com/notifycar/notifycar/internal/providers/email"
	"github.com/notifycar/notifycar/internal/settings/domain"
	"github.com/notifycar/notifycar/internal/settings/repository"
	"github.com/notifycar/notifycar/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeEmail struct {
	lastCfg email.Config
	lastTo  []string
	err     error
}

func (f *fakeEmail) Send(ctx context.Context, cfg email.Config, to []string, subject, htmlBody string) error {
	f.lastCfg = cfg
	f.lastTo = to
	return f.err
}

func newTestService(t *testing.T, cfg config.Config, provider email.Provider) (domain.Service, *gorm.DB) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&domain.SystemSetting{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	now := time.Now().UTC()
	if err := dbConn.Create(&domain.SystemSetting{ID: domain.DefaultID, SiteName: "NotifyCar", CreatedAt: now, UpdatedAt: now}).Error; err != nil {
		t.Fatalf("failed to seed settings: %v", err)
	}

	return New(zap.NewNop(), repository.New(dbConn), cfg, provider), dbConn
}

func TestUpdateKeepsSingleRow(t *testing.T) {
	svc, dbConn := newTestService(t, config.Config{}, &email.NoOpProvider{})

	maintenance := true
	wrapper := "Hola: {{message}}"
	updated, err := svc.Update(context.Background(), domain.UpdateRequest{
		MaintenanceMode: &maintenance,
		MessageWrapper:  &wrapper,
	})
	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	if !updated.MaintenanceMode || updated.MessageWrapper != wrapper {
		t.Fatalf("unexpected settings: %+v", updated)
	}

	var count int64
	if err := dbConn.Model(&domain.SystemSetting{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one settings row, got %d", count)
	}
}

func TestTestSMTPFallsBackToEnv(t *testing.T) {
	fake := &fakeEmail{}
	svc, _ := newTestService(t, config.Config{
		SMTPHost: "smtp.env.example",
		SMTPPort: 2525,
		SMTPFrom: "env@notifycar.app",
	}, fake)

	if err := svc.TestSMTP(context.Background(), "admin@example.com"); err != nil {
		t.Fatalf("test smtp failed: %v", err)
	}
	if fake.lastCfg.Host != "smtp.env.example" || fake.lastCfg.Port != 2525 {
		t.Fatalf("expected env fallback, got %+v", fake.lastCfg)
	}
	if len(fake.lastTo) != 1 || fake.lastTo[0] != "admin@example.com" {
		t.Fatalf("unexpected recipients: %v", fake.lastTo)
	}
}

func TestTestSMTPPrefersSettingsRow(t *testing.T) {
	fake := &fakeEmail{}
	svc, _ := newTestService(t, config.Config{SMTPHost: "smtp.env.example"}, fake)

	host := "smtp.row.example"
	if _, err := svc.Update(context.Background(), domain.UpdateRequest{SMTPHost: &host}); err != nil {
		t.Fatalf("failed to update: %v", err)
	}

	if err := svc.TestSMTP(context.Background(), "admin@example.com"); err != nil {
		t.Fatalf("test smtp failed: %v", err)
	}
	if fake.lastCfg.Host != "smtp.row.example" {
		t.Fatalf("expected settings row host, got %s", fake.lastCfg.Host)
	}
}

func TestTestSMTPSurfacesFailure(t *testing.T) {
	fake := &fakeEmail{err: errors.New("dial tcp: connection refused")}
	svc, _ := newTestService(t, config.Config{SMTPHost: "smtp.env.example"}, fake)

	err := svc.TestSMTP(context.Background(), "admin@example.com")
	if err == nil || err.Error() != "dial tcp: connection refused" {
		t.Fatalf("expected transport error surfaced, got %v", err)
	}
}
