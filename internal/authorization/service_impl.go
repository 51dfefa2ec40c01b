package authorization

import (
	"context"
	_ "embed"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectUser         = "user"
	ObjectOrganization = "organization"
	ObjectVehicle      = "vehicle"
	ObjectTemplate     = "template"
	ObjectNotification = "notification"
	ObjectEmergency    = "emergency"
	ObjectSettings     = "settings"
	ObjectImport       = "import"
	ObjectDashboard    = "dashboard"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"

	ActionNotificationSend = "notification.send"
	ActionImportRun        = "import.run"
	ActionSettingsTestSMTP = "settings.test_smtp"
	ActionTokenRotate      = "organization.rotate_token"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, role string, object string, action string) error {
	role = strings.TrimSpace(role)
	if role == "" {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject := roleSubject(role)
	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("role", role),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func roleSubject(role string) string {
	return "role:" + strings.ToLower(strings.TrimSpace(role))
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	crud := []string{ActionView, ActionCreate, ActionUpdate, ActionDelete}

	policies := [][]string{}
	grant := func(role, object string, actions ...string) {
		for _, action := range actions {
			policies = append(policies, []string{role, object, action})
		}
	}

	// Admins manage every object.
	for _, object := range []string{ObjectUser, ObjectOrganization, ObjectVehicle, ObjectTemplate, ObjectNotification, ObjectEmergency} {
		grant("role:admin", object, crud...)
	}
	grant("role:admin", ObjectSettings, ActionView, ActionUpdate, ActionSettingsTestSMTP)
	grant("role:admin", ObjectOrganization, ActionTokenRotate)
	grant("role:admin", ObjectNotification, ActionNotificationSend)
	grant("role:admin", ObjectImport, ActionImportRun)
	grant("role:admin", ObjectDashboard, ActionView)

	// Org operators (corporate and institutional) run their own
	// fleet: vehicles, operator accounts, templates, notifications.
	for _, role := range []string{"role:corporate", "role:institutional"} {
		grant(role, ObjectVehicle, crud...)
		grant(role, ObjectUser, crud...)
		grant(role, ObjectTemplate, crud...)
		grant(role, ObjectNotification, ActionView, ActionNotificationSend)
		grant(role, ObjectOrganization, ActionView, ActionUpdate, ActionTokenRotate)
		grant(role, ObjectImport, ActionImportRun)
		grant(role, ObjectDashboard, ActionView)
	}

	// Field operators send notifications, nothing else.
	grant("role:operator", ObjectVehicle, ActionView)
	grant("role:operator", ObjectTemplate, ActionView)
	grant("role:operator", ObjectNotification, ActionView, ActionNotificationSend)
	grant("role:operator", ObjectDashboard, ActionView)

	// Drivers manage their own vehicles and read what they received.
	grant("role:driver", ObjectVehicle, crud...)
	grant("role:driver", ObjectTemplate, ActionView)
	grant("role:driver", ObjectNotification, ActionView, ActionNotificationSend)
	grant("role:driver", ObjectDashboard, ActionView)

	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}
	return nil
}
