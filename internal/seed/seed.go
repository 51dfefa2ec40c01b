// Package seed writes the baseline rows a fresh install needs: the
// settings row, a default admin, starter templates, emergency numbers
// and the country list. Every step is idempotent.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"

	"github.com/notifycar/notifycar/internal/auth/password"
	"github.com/notifycar/notifycar/internal/config"
	emergencydomain "github.com/notifycar/notifycar/internal/emergency/domain"
	"github.com/notifycar/notifycar/internal/reference"
	referencedomain "github.com/notifycar/notifycar/internal/reference/domain"
	settingsdomain "github.com/notifycar/notifycar/internal/settings/domain"
	templatedomain "github.com/notifycar/notifycar/internal/template/domain"
	userdomain "github.com/notifycar/notifycar/internal/user/domain"
)

const defaultSiteName = "NotifyCar"

func Run(db *gorm.DB, cfg config.Config) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureSettings(ctx, tx); err != nil {
			return err
		}
		if cfg.Bootstrap.EnsureDefaultAdmin {
			if err := ensureAdmin(ctx, tx, node, cfg.Bootstrap); err != nil {
				return err
			}
		}
		if err := ensureGlobalTemplates(ctx, tx, node); err != nil {
			return err
		}
		if err := ensureEmergencyDefaults(ctx, tx, node); err != nil {
			return err
		}
		return ensureCountries(ctx, tx)
	})
}

func ensureSettings(ctx context.Context, tx *gorm.DB) error {
	var existing settingsdomain.SystemSetting
	err := tx.WithContext(ctx).
		Where("id = ?", settingsdomain.DefaultID).
		First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	return tx.WithContext(ctx).Create(&settingsdomain.SystemSetting{
		ID:        settingsdomain.DefaultID,
		SiteName:  defaultSiteName,
		CreatedAt: now,
		UpdatedAt: now,
	}).Error
}

func ensureAdmin(ctx context.Context, tx *gorm.DB, node *snowflake.Node, cfg config.BootstrapConfig) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" {
		return nil
	}

	var existing userdomain.User
	err := tx.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := password.Hash(cfg.AdminPassword)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return tx.WithContext(ctx).Create(&userdomain.User{
		ID:           node.Generate(),
		Email:        email,
		PasswordHash: &hash,
		Name:         "Administrator",
		Role:         userdomain.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}).Error
}

func ensureGlobalTemplates(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	err := tx.WithContext(ctx).
		Model(&templatedomain.Template{}).
		Where("org_id IS NULL").
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	starters := []templatedomain.Template{
		{Title: "Luces encendidas", Body: "Tu vehículo tiene las luces encendidas.", Category: "alert", VehicleType: templatedomain.ApplyAll},
		{Title: "Ventana abierta", Body: "Tu vehículo tiene una ventana abierta.", Category: "alert", VehicleType: templatedomain.ApplyAll},
		{Title: "Alarma sonando", Body: "La alarma de tu vehículo está sonando.", Category: "alert", VehicleType: templatedomain.ApplyAll},
		{Title: "Mal estacionado", Body: "Tu vehículo está bloqueando una salida.", Category: "parking", VehicleType: templatedomain.ApplyAll},
		{Title: "Grúa en camino", Body: "Una grúa está por remolcar tu vehículo.", Category: "parking", VehicleType: templatedomain.ApplyAll},
		{Title: "Casco olvidado", Body: "Dejaste el casco sobre tu moto.", Category: "alert", VehicleType: templatedomain.ApplyMotorcycle},
		{Title: "Carga completa", Body: "Tu vehículo terminó de cargar; el punto de carga está ocupado.", Category: "charging", VehicleType: templatedomain.ApplyElectric},
	}
	for i := range starters {
		starters[i].ID = node.Generate()
		starters[i].Active = true
		starters[i].CreatedAt = now
		starters[i].UpdatedAt = now
	}
	return tx.WithContext(ctx).Create(&starters).Error
}

func ensureEmergencyDefaults(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	var count int64
	if err := tx.WithContext(ctx).Model(&emergencydomain.Config{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	defaults := []emergencydomain.Config{
		{Country: "Colombia", Police: "123", Ambulance: "125", Fire: "119"},
		{Country: "México", Police: "911", Ambulance: "911", Fire: "911"},
		{Country: "Argentina", Police: "911", Ambulance: "107", Fire: "100"},
		{Country: "Chile", Police: "133", Ambulance: "131", Fire: "132"},
		{Country: "España", Police: "112", Ambulance: "112", Fire: "112"},
	}
	for i := range defaults {
		defaults[i].ID = node.Generate()
		defaults[i].Active = true
		defaults[i].CreatedAt = now
		defaults[i].UpdatedAt = now
	}
	return tx.WithContext(ctx).Create(&defaults).Error
}

func ensureCountries(ctx context.Context, tx *gorm.DB) error {
	now := time.Now().UTC()
	countries := []referencedomain.Country{
		{Code: "AR", Name: "Argentina", DialCode: "+54"},
		{Code: "CL", Name: "Chile", DialCode: "+56"},
		{Code: "CO", Name: "Colombia", DialCode: "+57"},
		{Code: "EC", Name: "Ecuador", DialCode: "+593"},
		{Code: "ES", Name: "España", DialCode: "+34"},
		{Code: "MX", Name: "México", DialCode: "+52"},
		{Code: "PE", Name: "Perú", DialCode: "+51"},
		{Code: "US", Name: "Estados Unidos", DialCode: "+1"},
	}
	for i := range countries {
		countries[i].CreatedAt = now
	}
	return reference.NewRepository(tx).UpsertCountries(ctx, countries)
}
