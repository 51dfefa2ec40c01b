package authorization

import (
	"context"
	"testing"

	"github.com/notifycar/notifycar/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	enforcer, err := NewEnforcer(dbConn)
	if err != nil {
		t.Fatalf("failed to build enforcer: %v", err)
	}
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestAdminManagesSettings(t *testing.T) {
	svc := newTestService(t)

	if err := svc.Authorize(context.Background(), "ADMIN", ObjectSettings, ActionUpdate); err != nil {
		t.Fatalf("expected admin settings update allowed, got %v", err)
	}
}

func TestOperatorCannotWriteAdminObjects(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		object string
		action string
	}{
		{ObjectSettings, ActionUpdate},
		{ObjectUser, ActionCreate},
		{ObjectVehicle, ActionDelete},
		{ObjectEmergency, ActionUpdate},
		{ObjectOrganization, ActionUpdate},
	}
	for _, tc := range cases {
		if err := svc.Authorize(context.Background(), "OPERATOR", tc.object, tc.action); err != ErrForbidden {
			t.Fatalf("expected ErrForbidden for operator %s.%s, got %v", tc.object, tc.action, err)
		}
	}
}

func TestOperatorSendsNotifications(t *testing.T) {
	svc := newTestService(t)

	if err := svc.Authorize(context.Background(), "OPERATOR", ObjectNotification, ActionNotificationSend); err != nil {
		t.Fatalf("expected operator notification send allowed, got %v", err)
	}
}

func TestCorporateRunsImports(t *testing.T) {
	svc := newTestService(t)

	if err := svc.Authorize(context.Background(), "CORPORATE", ObjectImport, ActionImportRun); err != nil {
		t.Fatalf("expected corporate import allowed, got %v", err)
	}
	if err := svc.Authorize(context.Background(), "DRIVER", ObjectImport, ActionImportRun); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden for driver import, got %v", err)
	}
}

func TestEmptyRoleRejected(t *testing.T) {
	svc := newTestService(t)

	if err := svc.Authorize(context.Background(), "", ObjectVehicle, ActionView); err != ErrInvalidActor {
		t.Fatalf("expected ErrInvalidActor, got %v", err)
	}
}
