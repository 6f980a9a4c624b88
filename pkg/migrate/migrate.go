package migrate

import (
	"context"
	"fmt"

	"github.com/courierlabs/robocourier-backend/pkg/db"
	"github.com/courierlabs/robocourier-backend/pkg/db/models"
	"github.com/courierlabs/robocourier-backend/pkg/logger"
)

// Run applies the schema via GORM auto-migration. Production deploys
// manage schema out of band and leave auto-migration disabled.
func Run(ctx context.Context, client *db.Client, logg *logger.Logger) error {
	if err := client.DB().WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Target{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "database schema migrated")
	}
	return nil
}
