package main

import (
	"context"
	"flag"
	"os"

	"go-handicraft-ops/internal/repository"
	"go-handicraft-ops/internal/service"
	"go-handicraft-ops/pkg/config"
	"go-handicraft-ops/pkg/database"
	"go-handicraft-ops/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "reset-password", Console: true})

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on system env")
	}
	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "load config", err)
		os.Exit(1)
	}

	email := flag.String("email", cfg.App.AdminEmail, "account to reset")
	password := flag.String("password", cfg.App.AdminPassword, "new password (min 6 characters)")
	flag.Parse()

	// 2. Setup Database
	db, err := database.ConnectDB(ctx, cfg.DB, logg, false)
	if err != nil {
		logg.Error(ctx, "connect database", err)
		os.Exit(1)
	}
	defer database.Close(db)

	// 3. Reset through the service so the active session is revoked too
	users := service.NewUserService(repository.NewUserRepo(db), repository.NewPrivilegeRepo(db), repository.NewRoleRepo(db), logg)
	ctx = logg.WithField(ctx, "email", *email)
	if err := users.ResetPassword(ctx, *email, *password); err != nil {
		logg.Error(ctx, "reset password failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "password reset")
}
