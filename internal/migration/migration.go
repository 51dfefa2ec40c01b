// Package migration creates the schema on startup so a fresh install
// is usable without manual steps. Postgres runs the embedded SQL
// migrations; other drivers fall back to gorm auto-migration.
package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	authdomain "github.com/notifycar/notifycar/internal/auth/domain"
	emergencydomain "github.com/notifycar/notifycar/internal/emergency/domain"
	notifdomain "github.com/notifycar/notifycar/internal/notification/domain"
	orgdomain "github.com/notifycar/notifycar/internal/organization/domain"
	referencedomain "github.com/notifycar/notifycar/internal/reference/domain"
	settingsdomain "github.com/notifycar/notifycar/internal/settings/domain"
	templatedomain "github.com/notifycar/notifycar/internal/template/domain"
	userdomain "github.com/notifycar/notifycar/internal/user/domain"
	vehicledomain "github.com/notifycar/notifycar/internal/vehicle/domain"
	verificationdomain "github.com/notifycar/notifycar/internal/verification/domain"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "migrations"

func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// AutoMigrate covers the sqlite and mysql paths, where the embedded
// postgres migrations do not apply.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&orgdomain.Organization{},
		&userdomain.User{},
		&authdomain.Session{},
		&vehicledomain.Vehicle{},
		&templatedomain.Template{},
		&notifdomain.Notification{},
		&settingsdomain.SystemSetting{},
		&verificationdomain.Token{},
		&emergencydomain.Config{},
		&referencedomain.Country{},
	)
}
