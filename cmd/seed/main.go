package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/feedmill-backend/internal/admins"
	"github.com/angelmondragon/feedmill-backend/pkg/config"
	"github.com/angelmondragon/feedmill-backend/pkg/db"
	"github.com/angelmondragon/feedmill-backend/pkg/db/models"
	"github.com/angelmondragon/feedmill-backend/pkg/enums"
	"github.com/angelmondragon/feedmill-backend/pkg/logger"
	"github.com/angelmondragon/feedmill-backend/pkg/migrate"
	"github.com/angelmondragon/feedmill-backend/pkg/security"
)

const tempPasswordLength = 16

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	requireResource(ctx, logg, "dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	password := cfg.Seed.AdminPassword
	generated := false
	if strings.TrimSpace(password) == "" {
		password, err = security.GenerateTempPassword(tempPasswordLength)
		requireResource(ctx, logg, "password generator", err)
		generated = true
	}

	hash, err := security.NewHasher(cfg.Password).Hash(password)
	requireResource(ctx, logg, "password hash", err)

	admin := &models.AdminUser{
		Email:        cfg.Seed.AdminEmail,
		PasswordHash: hash,
		Name:         cfg.Seed.AdminName,
		Role:         enums.RoleAdmin,
		IsActive:     true,
	}
	if phone := strings.TrimSpace(cfg.Seed.AdminPhone); phone != "" {
		admin.Phone = &phone
	}

	created, err := admins.NewRepository(dbClient.DB()).Upsert(ctx, admin)
	requireResource(ctx, logg, "admin upsert", err)

	ctx = logg.WithFields(ctx, map[string]any{
		"admin_id": admin.ID.String(),
		"email":    admin.Email,
		"created":  created,
	})
	logg.Info(ctx, "admin user seeded")
	if generated {
		fmt.Printf("generated password for %s: %s\n", admin.Email, password)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
