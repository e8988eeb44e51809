// Package app assembles the store backend and service configuration
// shared by the server and the admin tool.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/iliyamo/fridge-share/internal/config"
	"github.com/iliyamo/fridge-share/internal/database"
	"github.com/iliyamo/fridge-share/internal/repository"
	"github.com/iliyamo/fridge-share/internal/repository/memory"
	"github.com/iliyamo/fridge-share/internal/service"
)

// Backend is an opened set of stores. DB is nil for the memory driver.
type Backend struct {
	Stores service.Stores
	DB     *sqlx.DB
}

// Close releases the database pool, if any.
func (b *Backend) Close() error {
	if b.DB == nil {
		return nil
	}
	return b.DB.Close()
}

// OpenStores opens the backend named by cfg.StoreDriver and, for MySQL,
// applies pending migrations when cfg.DBMigrate is set.
func OpenStores(ctx context.Context, cfg config.Config, log *zap.Logger) (*Backend, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("using in-memory stores; data is lost on restart")
		return &Backend{Stores: MemoryStores(memory.New())}, nil
	}
	db, err := database.Open(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("migrations applied")
	}
	return &Backend{Stores: MySQLStores(db), DB: db}, nil
}

// MySQLStores builds every store over one pool.
func MySQLStores(db *sqlx.DB) service.Stores {
	return service.Stores{
		Accounts:      repository.NewAccountRepo(db),
		Profiles:      repository.NewProfileRepo(db),
		Fridges:       repository.NewFridgeRepo(db),
		Invites:       repository.NewInviteRepo(db),
		Items:         repository.NewItemRepo(db),
		Categories:    repository.NewCategoryRepo(db),
		Notifications: repository.NewNotificationRepo(db),
		Tokens:        repository.NewTokenRepo(db),
	}
}

func MemoryStores(db *memory.DB) service.Stores {
	return service.Stores{
		Accounts:      db.Accounts(),
		Profiles:      db.Profiles(),
		Fridges:       db.Fridges(),
		Invites:       db.Invites(),
		Items:         db.Items(),
		Categories:    db.Categories(),
		Notifications: db.Notifications(),
		Tokens:        db.Tokens(),
	}
}

// ServiceConfig projects the runtime configuration onto service.Config.
func ServiceConfig(cfg config.Config) service.Config {
	return service.Config{
		JWTSecret:       cfg.JWTSecret,
		AccessTTLMin:    cfg.AccessTTLMin,
		RefreshTTLDays:  cfg.RefreshTTLDays,
		BcryptCost:      cfg.BcryptCost,
		InviteTTL:       cfg.InviteTTL,
		InviteRetention: cfg.InviteRetention,
		VerificationTTL: cfg.VerificationTTL,
		ResetTTL:        cfg.ResetTTL,
		Location:        cfg.Location,
	}
}
