package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	authrepo "github.com/notifycar/notifycar/internal/auth/repository"
	authservice "github.com/notifycar/notifycar/internal/auth/service"
	"github.com/notifycar/notifycar/internal/auth/session"
	"github.com/notifycar/notifycar/internal/authorization"
	"github.com/notifycar/notifycar/internal/config"
	dashboardservice "github.com/notifycar/notifycar/internal/dashboard/service"
	emergencyrepo "github.com/notifycar/notifycar/internal/emergency/repository"
	emergencyservice "github.com/notifycar/notifycar/internal/emergency/service"
	"github.com/notifycar/notifycar/internal/migration"
	notifrepo "github.com/notifycar/notifycar/internal/notification/repository"
	notifservice "github.com/notifycar/notifycar/internal/notification/service"
	orgrepo "github.com/notifycar/notifycar/internal/organization/repository"
	orgservice "github.com/notifycar/notifycar/internal/organization/service"
	"github.com/notifycar/notifycar/internal/providers/email"
	"github.com/notifycar/notifycar/internal/providers/webhook"
	"github.com/notifycar/notifycar/internal/reference"
	"github.com/notifycar/notifycar/internal/seed"
	settingsdomain "github.com/notifycar/notifycar/internal/settings/domain"
	settingsrepo "github.com/notifycar/notifycar/internal/settings/repository"
	settingsservice "github.com/notifycar/notifycar/internal/settings/service"
	templaterepo "github.com/notifycar/notifycar/internal/template/repository"
	templateservice "github.com/notifycar/notifycar/internal/template/service"
	userdomain "github.com/notifycar/notifycar/internal/user/domain"
	userrepo "github.com/notifycar/notifycar/internal/user/repository"
	userservice "github.com/notifycar/notifycar/internal/user/service"
	vehiclerepo "github.com/notifycar/notifycar/internal/vehicle/repository"
	vehicleservice "github.com/notifycar/notifycar/internal/vehicle/service"
	verificationrepo "github.com/notifycar/notifycar/internal/verification/repository"
	verificationservice "github.com/notifycar/notifycar/internal/verification/service"
	"github.com/notifycar/notifycar/pkg/db"
)

type fixture struct {
	srv  *Server
	db   *gorm.DB
	node *snowflake.Node
	cfg  config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := migration.AutoMigrate(dbConn); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := seed.Run(dbConn, config.Config{}); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	log := zap.NewNop()
	cfg := config.Config{HTTPAddr: ":0"}

	users := userrepo.New(dbConn)
	userSvc := userservice.New(log, users, node, nil)

	sessions := authrepo.New(dbConn)
	authSvc := authservice.New(log, users, sessions, node)

	enforcer, err := authorization.NewEnforcer(dbConn)
	if err != nil {
		t.Fatalf("failed to build enforcer: %v", err)
	}
	authzSvc := authorization.NewService(authorization.Params{Log: log, Enforcer: enforcer})

	orgs := orgrepo.New(dbConn)
	orgSvc := orgservice.New(log, orgs, userSvc, node)

	vehicles := vehiclerepo.New(dbConn)
	vehicleSvc := vehicleservice.New(log, vehicles, node, nil)

	templates := templaterepo.New(dbConn)
	templateSvc := templateservice.New(log, templates, node)

	settings := settingsrepo.New(dbConn)
	settingsSvc := settingsservice.New(log, settings, cfg, &email.NoOpProvider{})

	notifSvc := notifservice.New(notifservice.Params{
		Log:      log,
		Repo:     notifrepo.New(dbConn),
		Vehicles: vehicles,
		Orgs:     orgs,
		Settings: settings,
		Webhook:  webhook.NoOpClient{},
		Config:   cfg,
		GenID:    node,
	})

	verificationSvc := verificationservice.New(verificationservice.Params{
		Log:     log,
		Repo:    verificationrepo.New(dbConn),
		Webhook: webhook.NoOpClient{},
		Config:  cfg,
		GenID:   node,
	})

	refrepo := reference.NewRepository(dbConn)
	emergencySvc := emergencyservice.New(log, emergencyrepo.New(dbConn), refrepo, node)

	dashboardSvc := dashboardservice.New(dashboardservice.Params{
		Log:           log,
		Vehicles:      vehicles,
		Users:         users,
		Notifications: notifrepo.New(dbConn),
		Templates:     templates,
		Orgs:          orgs,
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := NewServer(ServerParams{
		Gin:             engine,
		Cfg:             cfg,
		DB:              dbConn,
		GenID:           node,
		Sessions:        session.NewManager(cfg),
		Authsvc:         authSvc,
		AuthzSvc:        authzSvc,
		UserSvc:         userSvc,
		OrganizationSvc: orgSvc,
		VehicleSvc:      vehicleSvc,
		TemplateSvc:     templateSvc,
		NotificationSvc: notifSvc,
		VerificationSvc: verificationSvc,
		EmergencySvc:    emergencySvc,
		SettingsSvc:     settingsSvc,
		DashboardSvc:    dashboardSvc,
		Refrepo:         refrepo,
	})

	return &fixture{srv: srv, db: dbConn, node: node, cfg: cfg}
}

func (f *fixture) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	f.srv.Engine().ServeHTTP(rec, req)
	return rec
}

// login registers nothing; callers create the account first.
func (f *fixture) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/auth/login", gin.H{"email": email, "password": password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", rec.Code, rec.Body.String())
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "_sid" {
			return cookie
		}
	}
	t.Fatal("login response has no session cookie")
	return nil
}

func (f *fixture) createAdmin(t *testing.T) *http.Cookie {
	t.Helper()

	_, err := f.srv.userSvc.Create(context.Background(), userdomain.CreateRequest{
		Email:    "admin@notifycar.test",
		Password: "admin-pass-1",
		Name:     "Admin",
		Role:     userdomain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return f.login(t, "admin@notifycar.test", "admin-pass-1")
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/register", gin.H{
		"email":    "driver@example.com",
		"password": "secret-pass",
		"name":     "Ana",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	cookie := f.login(t, "driver@example.com", "secret-pass")

	me := f.do(t, http.MethodGet, "/auth/me", nil, cookie)
	if me.Code != http.StatusOK {
		t.Fatalf("expected 200 from /auth/me, got %d", me.Code)
	}
	var payload struct {
		Data struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"data"`
	}
	if err := json.Unmarshal(me.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode /auth/me: %v", err)
	}
	if payload.Data.Role != userdomain.RoleDriver {
		t.Fatalf("self-registered account must be a driver, got %s", payload.Data.Role)
	}
}

func TestProtectedRouteRequiresSession(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/vehicles", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestDriverCannotManageSettings(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/register", gin.H{
		"email":    "driver@example.com",
		"password": "secret-pass",
		"name":     "Ana",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", rec.Code)
	}
	cookie := f.login(t, "driver@example.com", "secret-pass")

	denied := f.do(t, http.MethodGet, "/api/admin/settings", nil, cookie)
	if denied.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", denied.Code, denied.Body.String())
	}
}

func TestVehicleLifecycleThroughAPI(t *testing.T) {
	f := newFixture(t)
	cookie := f.createAdmin(t)

	created := f.do(t, http.MethodPost, "/api/vehicles", gin.H{
		"plate": "abc 123",
		"brand": "Renault",
		"type":  "CAR",
	}, cookie)
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", created.Code, created.Body.String())
	}
	var payload struct {
		Data struct {
			ID    snowflake.ID `json:"id"`
			Plate string       `json:"plate"`
		} `json:"data"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if payload.Data.Plate != "ABC123" {
		t.Fatalf("expected normalized plate ABC123, got %s", payload.Data.Plate)
	}

	dup := f.do(t, http.MethodPost, "/api/vehicles", gin.H{"plate": "ABC123"}, cookie)
	if dup.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate plate, got %d", dup.Code)
	}

	got := f.do(t, http.MethodGet, fmt.Sprintf("/api/vehicles/%s", payload.Data.ID), nil, cookie)
	if got.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", got.Code)
	}
}

func TestPublicSearchHidesOwnerContact(t *testing.T) {
	f := newFixture(t)
	cookie := f.createAdmin(t)

	created := f.do(t, http.MethodPost, "/api/vehicles", gin.H{
		"plate":       "XYZ789",
		"owner_name":  "Carlos",
		"owner_phone": "3001112222",
	}, cookie)
	if created.Code != http.StatusCreated {
		t.Fatalf("create vehicle failed: %d", created.Code)
	}

	rec := f.do(t, http.MethodGet, "/api/search?plate=xyz789", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !bytes.Contains([]byte(body), []byte(`"found":true`)) {
		t.Fatalf("expected found plate, got %s", body)
	}
	if bytes.Contains([]byte(body), []byte("Carlos")) || bytes.Contains([]byte(body), []byte("3001112222")) {
		t.Fatalf("public search must not expose owner contact: %s", body)
	}

	missing := f.do(t, http.MethodGet, "/api/search?plate=NOPE99", nil)
	if missing.Code != http.StatusOK {
		t.Fatalf("unknown plate should still be 200, got %d", missing.Code)
	}
	if !bytes.Contains(missing.Body.Bytes(), []byte(`"found":false`)) {
		t.Fatalf("expected found:false, got %s", missing.Body.String())
	}
}

func TestSendNotificationThroughAPI(t *testing.T) {
	f := newFixture(t)
	cookie := f.createAdmin(t)

	created := f.do(t, http.MethodPost, "/api/vehicles", gin.H{"plate": "AAA111"}, cookie)
	if created.Code != http.StatusCreated {
		t.Fatalf("create vehicle failed: %d", created.Code)
	}

	sent := f.do(t, http.MethodPost, "/api/notifications", gin.H{
		"plate":   "AAA111",
		"message": "Luces encendidas",
	}, cookie)
	if sent.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", sent.Code, sent.Body.String())
	}

	unknown := f.do(t, http.MethodPost, "/api/notifications", gin.H{
		"plate":   "ZZZ999",
		"message": "hola",
	}, cookie)
	if unknown.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown plate, got %d", unknown.Code)
	}

	list := f.do(t, http.MethodGet, "/api/notifications", nil, cookie)
	if list.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", list.Code)
	}
}

func TestZonePageServesOrgByPublicToken(t *testing.T) {
	f := newFixture(t)
	cookie := f.createAdmin(t)

	created := f.do(t, http.MethodPost, "/api/organizations", gin.H{
		"name": "Zona Azul Centro",
		"type": "BLUE_ZONE",
	}, cookie)
	if created.Code != http.StatusCreated {
		t.Fatalf("create org failed: %d: %s", created.Code, created.Body.String())
	}

	rotated := f.do(t, http.MethodPost, extractOrgRotatePath(t, created.Body.Bytes()), nil, cookie)
	if rotated.Code != http.StatusOK {
		t.Fatalf("rotate token failed: %d", rotated.Code)
	}
	var rotatedPayload struct {
		PublicToken string `json:"public_token"`
	}
	if err := json.Unmarshal(rotated.Body.Bytes(), &rotatedPayload); err != nil {
		t.Fatalf("decode rotate response: %v", err)
	}
	if rotatedPayload.PublicToken == "" {
		t.Fatal("rotate must return the new public token")
	}

	zone := f.do(t, http.MethodGet, "/api/public/zone/"+rotatedPayload.PublicToken, nil)
	if zone.Code != http.StatusOK {
		t.Fatalf("expected 200 from zone page, got %d: %s", zone.Code, zone.Body.String())
	}
	if !bytes.Contains(zone.Body.Bytes(), []byte("Zona Azul Centro")) {
		t.Fatalf("zone payload missing org name: %s", zone.Body.String())
	}

	queried := f.do(t, http.MethodGet, "/api/public/zone?token="+rotatedPayload.PublicToken, nil)
	if queried.Code != http.StatusOK {
		t.Fatalf("expected 200 from query-token zone, got %d: %s", queried.Code, queried.Body.String())
	}
	if !bytes.Contains(queried.Body.Bytes(), []byte("Zona Azul Centro")) {
		t.Fatalf("query-token zone payload missing org name: %s", queried.Body.String())
	}

	stale := f.do(t, http.MethodGet, "/api/public/zone/not-a-token", nil)
	if stale.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for bad token, got %d", stale.Code)
	}
}

func extractOrgRotatePath(t *testing.T, createBody []byte) string {
	t.Helper()
	var payload struct {
		Data struct {
			ID snowflake.ID `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(createBody, &payload); err != nil {
		t.Fatalf("decode org create response: %v", err)
	}
	return fmt.Sprintf("/api/organizations/%s/rotate-token", payload.Data.ID)
}

func settingsUpdate(maintenance *bool) settingsdomain.UpdateRequest {
	return settingsdomain.UpdateRequest{MaintenanceMode: maintenance}
}

func TestMaintenanceModeBlocksNonAdmins(t *testing.T) {
	f := newFixture(t)
	adminCookie := f.createAdmin(t)

	on := true
	if _, err := f.srv.settingsSvc.Update(context.Background(), settingsUpdate(&on)); err != nil {
		t.Fatalf("enable maintenance: %v", err)
	}

	rec := f.do(t, http.MethodPost, "/api/register", gin.H{
		"email":    "driver@example.com",
		"password": "secret-pass",
		"name":     "Ana",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d", rec.Code)
	}
	driverCookie := f.login(t, "driver@example.com", "secret-pass")

	blocked := f.do(t, http.MethodGet, "/api/vehicles", nil, driverCookie)
	if blocked.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 during maintenance, got %d", blocked.Code)
	}

	allowed := f.do(t, http.MethodGet, "/api/vehicles", nil, adminCookie)
	if allowed.Code != http.StatusOK {
		t.Fatalf("admin must pass during maintenance, got %d", allowed.Code)
	}
}
