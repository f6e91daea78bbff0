package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/repository"
	"github.com/noah-isme/school-admin-api/pkg/config"
	"github.com/noah-isme/school-admin-api/pkg/database"
	"github.com/noah-isme/school-admin-api/pkg/logger"
)

type seedAdmin struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Seeds superuser accounts from an offline JSON list. Login never
// creates accounts, so at least one superuser has to exist before the
// API is usable.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	raw, err := os.ReadFile(cfg.Seed.AdminFile)
	if err != nil {
		logr.Sugar().Fatalw("failed to read seed file", "path", cfg.Seed.AdminFile, "error", err)
	}

	var admins []seedAdmin
	if err := json.Unmarshal(raw, &admins); err != nil {
		logr.Sugar().Fatalw("failed to parse seed file", "path", cfg.Seed.AdminFile, "error", err)
	}
	if len(admins) == 0 {
		logr.Sugar().Fatalw("seed file lists no admins", "path", cfg.Seed.AdminFile)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	users := repository.NewUserRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, admin := range admins {
		if admin.Email == "" {
			logr.Sugar().Warnw("skipping admin without email", "name", admin.Name)
			continue
		}

		user := &models.User{
			Name:  admin.Name,
			Email: &admin.Email,
			Role:  models.RoleSU,
		}
		if admin.Phone != "" {
			user.Phone = &admin.Phone
		}

		stored, err := users.UpsertByEmail(ctx, user)
		if err != nil {
			logr.Sugar().Fatalw("failed to seed admin", "email", admin.Email, "error", err)
		}
		if stored.Role != models.RoleSU {
			logr.Sugar().Warnw("user already exists with another role, left unchanged", "email", admin.Email, "role", stored.Role)
			continue
		}
		logr.Sugar().Infow("seeded admin", "email", admin.Email, "id", stored.ID)
	}
}
