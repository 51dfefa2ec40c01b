package service

import (
	"context"

	"github.com/notifycar/notifycar/internal/dashboard/domain"
	notifdomain "github.com/notifycar/notifycar/internal/notification/domain"
	"github.com/notifycar/notifycar/internal/orgcontext"
	orgdomain "github.com/notifycar/notifycar/internal/organization/domain"
	templatedomain "github.com/notifycar/notifycar/internal/template/domain"
	userdomain "github.com/notifycar/notifycar/internal/user/domain"
	vehicledomain "github.com/notifycar/notifycar/internal/vehicle/domain"
	"github.com/notifycar/notifycar/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const recentNotificationLimit = 5

type Params struct {
	fx.In

	Log           *zap.Logger
	Vehicles      vehicledomain.Repository
	Users         userdomain.Repository
	Notifications notifdomain.Repository
	Templates     templatedomain.Repository
	Orgs          orgdomain.Repository
}

type Service struct {
	log           *zap.Logger
	vehicles      vehicledomain.Repository
	users         userdomain.Repository
	notifications notifdomain.Repository
	templates     templatedomain.Repository
	orgs          orgdomain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		log:           p.Log.Named("dashboard.service"),
		vehicles:      p.Vehicles,
		users:         p.Users,
		notifications: p.Notifications,
		templates:     p.Templates,
		orgs:          p.Orgs,
	}
}

// scopeFromContext reads the authenticated principal placed on the
// request context by the auth middleware.
func scopeFromContext(ctx context.Context) domain.Scope {
	scope := domain.Scope{}

	role, _ := orgcontext.RoleFromContext(ctx)
	switch role {
	case userdomain.RoleAdmin:
	case userdomain.RoleCorporate, userdomain.RoleInstitutional, userdomain.RoleOperator:
		if orgID, ok := orgcontext.OrgIDFromContext(ctx); ok {
			scope.OrgID = &orgID
		}
	default:
		if userID, ok := orgcontext.UserIDFromContext(ctx); ok {
			scope.UserID = &userID
		}
	}
	return scope
}

func (s *Service) Summary(ctx context.Context) (*domain.Summary, error) {
	scope := scopeFromContext(ctx)
	summary := &domain.Summary{}

	vehicleFilter := vehicledomain.Filter{OrgID: scope.OrgID, UserID: scope.UserID}
	vehicles, err := s.vehicles.Count(ctx, vehicleFilter)
	if err != nil {
		return nil, err
	}
	summary.Vehicles = vehicles

	notifFilter := notifdomain.Filter{OrgID: scope.OrgID, SenderID: scope.UserID}
	notifications, err := s.notifications.Count(ctx, notifFilter)
	if err != nil {
		return nil, err
	}
	summary.Notifications = notifications

	delivered := notifFilter
	delivered.Status = notifdomain.StatusDelivered
	if summary.Delivered, err = s.notifications.Count(ctx, delivered); err != nil {
		return nil, err
	}
	failed := notifFilter
	failed.Status = notifdomain.StatusFailed
	if summary.Failed, err = s.notifications.Count(ctx, failed); err != nil {
		return nil, err
	}

	recent, _, err := s.notifications.List(ctx, notifFilter, pagination.Pagination{PageSize: recentNotificationLimit})
	if err != nil {
		return nil, err
	}
	summary.RecentNotifications = recent

	// Personal dashboards stop at vehicles and notifications.
	if scope.UserID != nil {
		return summary, nil
	}

	users, err := s.users.Count(ctx, userdomain.Filter{OrgID: scope.OrgID})
	if err != nil {
		return nil, err
	}
	summary.Users = users

	templateFilter := templatedomain.Filter{OrgID: scope.OrgID}
	if scope.OrgID == nil {
		templateFilter.GlobalOnly = true
	}
	templates, err := s.templates.Count(ctx, templateFilter)
	if err != nil {
		return nil, err
	}
	summary.Templates = templates

	// Organization totals only make sense globally.
	if scope.OrgID == nil {
		orgs, err := s.orgs.Count(ctx, orgdomain.Filter{})
		if err != nil {
			return nil, err
		}
		summary.Organizations = orgs
	}

	return summary, nil
}
