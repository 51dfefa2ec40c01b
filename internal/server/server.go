package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/notifycar/notifycar/internal/auth"
	authdomain "github.com/notifycar/notifycar/internal/auth/domain"
	"github.com/notifycar/notifycar/internal/auth/session"
	"github.com/notifycar/notifycar/internal/authorization"
	"github.com/notifycar/notifycar/internal/config"
	"github.com/notifycar/notifycar/internal/dashboard"
	dashboarddomain "github.com/notifycar/notifycar/internal/dashboard/domain"
	"github.com/notifycar/notifycar/internal/emergency"
	emergencydomain "github.com/notifycar/notifycar/internal/emergency/domain"
	"github.com/notifycar/notifycar/internal/notification"
	notifdomain "github.com/notifycar/notifycar/internal/notification/domain"
	"github.com/notifycar/notifycar/internal/observability"
	obsmiddleware "github.com/notifycar/notifycar/internal/observability/logger"
	obsmetrics "github.com/notifycar/notifycar/internal/observability/metrics"
	obstracing "github.com/notifycar/notifycar/internal/observability/tracing"
	"github.com/notifycar/notifycar/internal/organization"
	orgdomain "github.com/notifycar/notifycar/internal/organization/domain"
	"github.com/notifycar/notifycar/internal/providers/email"
	"github.com/notifycar/notifycar/internal/providers/webhook"
	"github.com/notifycar/notifycar/internal/ratelimit"
	"github.com/notifycar/notifycar/internal/reference"
	referencedomain "github.com/notifycar/notifycar/internal/reference/domain"
	"github.com/notifycar/notifycar/internal/settings"
	settingsdomain "github.com/notifycar/notifycar/internal/settings/domain"
	"github.com/notifycar/notifycar/internal/template"
	templatedomain "github.com/notifycar/notifycar/internal/template/domain"
	"github.com/notifycar/notifycar/internal/user"
	userdomain "github.com/notifycar/notifycar/internal/user/domain"
	"github.com/notifycar/notifycar/internal/vehicle"
	vehicledomain "github.com/notifycar/notifycar/internal/vehicle/domain"
	"github.com/notifycar/notifycar/internal/verification"
	verificationdomain "github.com/notifycar/notifycar/internal/verification/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	auth.Module,
	session.Module,
	email.Module,
	webhook.Module,
	user.Module,
	organization.Module,
	vehicle.Module,
	template.Module,
	notification.Module,
	verification.Module,
	emergency.Module,
	settings.Module,
	dashboard.Module,
	reference.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware(obsCfg.ServiceName))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine          *gin.Engine
	cfg             config.Config
	db              *gorm.DB
	genID           *snowflake.Node
	sessions        *session.Manager
	authsvc         authdomain.Service
	authzSvc        authorization.Service
	userSvc         userdomain.Service
	organizationSvc orgdomain.Service
	vehicleSvc      vehicledomain.Service
	templateSvc     templatedomain.Service
	notificationSvc notifdomain.Service
	verificationSvc verificationdomain.Service
	emergencySvc    emergencydomain.Service
	settingsSvc     settingsdomain.Service
	dashboardSvc    dashboarddomain.Service
	refrepo         referencedomain.Repository
	limiter         *ratelimit.PublicLimiter
	obsMetrics      *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	DB              *gorm.DB
	GenID           *snowflake.Node
	Sessions        *session.Manager
	Authsvc         authdomain.Service
	AuthzSvc        authorization.Service
	UserSvc         userdomain.Service
	OrganizationSvc orgdomain.Service
	VehicleSvc      vehicledomain.Service
	TemplateSvc     templatedomain.Service
	NotificationSvc notifdomain.Service
	VerificationSvc verificationdomain.Service
	EmergencySvc    emergencydomain.Service
	SettingsSvc     settingsdomain.Service
	DashboardSvc    dashboarddomain.Service
	Refrepo         referencedomain.Repository
	Limiter         *ratelimit.PublicLimiter `optional:"true"`
	ObsMetrics      *obsmetrics.Metrics      `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		db:              p.DB,
		genID:           p.GenID,
		sessions:        p.Sessions,
		authsvc:         p.Authsvc,
		authzSvc:        p.AuthzSvc,
		userSvc:         p.UserSvc,
		organizationSvc: p.OrganizationSvc,
		vehicleSvc:      p.VehicleSvc,
		templateSvc:     p.TemplateSvc,
		notificationSvc: p.NotificationSvc,
		verificationSvc: p.VerificationSvc,
		emergencySvc:    p.EmergencySvc,
		settingsSvc:     p.SettingsSvc,
		dashboardSvc:    p.DashboardSvc,
		refrepo:         p.Refrepo,
		limiter:         p.Limiter,
		obsMetrics:      p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerPublicRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.AuthRequired(), s.Me)
	auth.POST("/change-password", s.AuthRequired(), s.ChangePassword)
}

func (s *Server) registerPublicRoutes() {
	api := s.engine.Group("/api")

	api.POST("/register", s.PublicRateLimit("register"), s.Register)
	api.GET("/search", s.PublicRateLimit("search"), s.SearchPlate)
	api.GET("/countries", s.ListCountries)

	public := api.Group("/public")
	public.GET("/templates", s.ListPublicTemplates)
	public.GET("/emergency", s.ListEmergencyNumbers)
	public.GET("/zone", s.PublicRateLimit("zone"), s.GetZone)
	public.POST("/zone/notify", s.PublicRateLimit("zone"), s.ZoneNotify)
	public.GET("/zone/:token", s.PublicRateLimit("zone"), s.GetZone)
	public.POST("/zone/:token/notify", s.PublicRateLimit("zone"), s.ZoneNotify)

	verify := api.Group("/verify")
	verify.POST("/request", s.PublicRateLimit("verify"), s.RequestVerification)
	verify.POST("/confirm", s.PublicRateLimit("verify"), s.ConfirmVerification)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.AuthRequired())
	api.Use(s.MaintenanceGate())

	// -------- Vehicles --------
	api.GET("/vehicles", s.authorize(authorization.ObjectVehicle, authorization.ActionView), s.ListVehicles)
	api.POST("/vehicles", s.authorize(authorization.ObjectVehicle, authorization.ActionCreate), s.CreateVehicle)
	api.GET("/vehicles/:id", s.authorize(authorization.ObjectVehicle, authorization.ActionView), s.GetVehicleByID)
	api.PATCH("/vehicles/:id", s.authorize(authorization.ObjectVehicle, authorization.ActionUpdate), s.UpdateVehicle)
	api.DELETE("/vehicles/:id", s.authorize(authorization.ObjectVehicle, authorization.ActionDelete), s.DeleteVehicle)

	// -------- Templates --------
	api.GET("/templates", s.authorize(authorization.ObjectTemplate, authorization.ActionView), s.ListTemplates)
	api.GET("/templates/resolve", s.authorize(authorization.ObjectTemplate, authorization.ActionView), s.ResolveTemplates)
	api.POST("/templates", s.authorize(authorization.ObjectTemplate, authorization.ActionCreate), s.CreateTemplate)
	api.GET("/templates/:id", s.authorize(authorization.ObjectTemplate, authorization.ActionView), s.GetTemplateByID)
	api.PATCH("/templates/:id", s.authorize(authorization.ObjectTemplate, authorization.ActionUpdate), s.UpdateTemplate)
	api.DELETE("/templates/:id", s.authorize(authorization.ObjectTemplate, authorization.ActionDelete), s.DeleteTemplate)

	// -------- Notifications --------
	api.GET("/notifications", s.authorize(authorization.ObjectNotification, authorization.ActionView), s.ListNotifications)
	api.POST("/notifications", s.authorize(authorization.ObjectNotification, authorization.ActionNotificationSend), s.SendNotification)
	api.GET("/notifications/:id", s.authorize(authorization.ObjectNotification, authorization.ActionView), s.GetNotificationByID)

	// -------- Users --------
	api.GET("/users", s.authorize(authorization.ObjectUser, authorization.ActionView), s.ListUsers)
	api.POST("/users", s.authorize(authorization.ObjectUser, authorization.ActionCreate), s.CreateUser)
	api.GET("/users/:id", s.authorize(authorization.ObjectUser, authorization.ActionView), s.GetUserByID)
	api.PATCH("/users/:id", s.authorize(authorization.ObjectUser, authorization.ActionUpdate), s.UpdateUser)
	api.DELETE("/users/:id", s.authorize(authorization.ObjectUser, authorization.ActionDelete), s.DeleteUser)
	api.PATCH("/profile", s.UpdateProfile)

	// -------- Organizations --------
	api.GET("/organizations", s.authorize(authorization.ObjectOrganization, authorization.ActionView), s.ListOrganizations)
	api.POST("/organizations", s.authorize(authorization.ObjectOrganization, authorization.ActionCreate), s.CreateOrganization)
	api.GET("/organizations/:id", s.authorize(authorization.ObjectOrganization, authorization.ActionView), s.GetOrganizationByID)
	api.PATCH("/organizations/:id", s.authorize(authorization.ObjectOrganization, authorization.ActionUpdate), s.UpdateOrganization)
	api.DELETE("/organizations/:id", s.authorize(authorization.ObjectOrganization, authorization.ActionDelete), s.DeleteOrganization)
	api.POST("/organizations/:id/rotate-token", s.authorize(authorization.ObjectOrganization, authorization.ActionTokenRotate), s.RotateOrganizationToken)

	// -------- Emergency --------
	api.GET("/emergency", s.authorize(authorization.ObjectEmergency, authorization.ActionView), s.ListEmergencyConfigs)
	api.PUT("/emergency", s.authorize(authorization.ObjectEmergency, authorization.ActionUpdate), s.UpsertEmergencyConfig)
	api.DELETE("/emergency/:id", s.authorize(authorization.ObjectEmergency, authorization.ActionDelete), s.DeleteEmergencyConfig)

	// -------- Imports --------
	api.POST("/imports/vehicles", s.authorize(authorization.ObjectImport, authorization.ActionImportRun), s.ImportVehicles)
	api.POST("/imports/users", s.authorize(authorization.ObjectImport, authorization.ActionImportRun), s.ImportUsers)

	// -------- Dashboard --------
	api.GET("/dashboard", s.authorize(authorization.ObjectDashboard, authorization.ActionView), s.GetDashboard)

	// -------- Admin settings --------
	admin := api.Group("/admin")
	admin.GET("/settings", s.authorize(authorization.ObjectSettings, authorization.ActionView), s.GetSettings)
	admin.PATCH("/settings", s.authorize(authorization.ObjectSettings, authorization.ActionUpdate), s.UpdateSettings)
	admin.POST("/settings/test-smtp", s.authorize(authorization.ObjectSettings, authorization.ActionSettingsTestSMTP), s.TestSMTP)
}
