// Command seedadmin creates the administrator account named by ADMIN_EMAIL,
// ADMIN_PASSWORD and ADMIN_NAME. It is a no-op when the admin exists.
package main

import (
	"context"
	"errors"
	"log"
	"time"

	"freelancehub/admin"
	"freelancehub/config"
	"freelancehub/db"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger, err := cfg.Logger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		logger.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	client, database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer client.Disconnect(context.Background())
	if err := db.EnsureIndexes(ctx, database); err != nil {
		logger.Fatal("ensure indexes", zap.Error(err))
	}

	// the token manager is only needed for signin
	svc := admin.NewService(admin.New(database), nil, "", logger)
	a, err := svc.Create(ctx, admin.Input{
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
		FullName: cfg.Admin.Name,
	})
	switch {
	case errors.Is(err, admin.ErrExists):
		logger.Info("admin already exists", zap.String("email", cfg.Admin.Email))
	case err != nil:
		logger.Fatal("create admin", zap.Error(err))
	default:
		logger.Info("admin created", zap.String("id", a.ID.Hex()), zap.String("email", a.Email))
	}
}
