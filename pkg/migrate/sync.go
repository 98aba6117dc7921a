package migrate

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/angelmondragon/trailteams-backend/pkg/db/models"
)

// schemaModels lists every table the service owns, in dependency order.
var schemaModels = []any{
	&models.User{},
	&models.Team{},
	&models.TeamMembership{},
	&models.OutboxEvent{},
	&models.OutboxDLQ{},
}

// SyncModels creates the schema from the gorm models. The SQL migrations are
// Postgres specific, so local SQLite runs and repository tests use this instead.
func SyncModels(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db is required")
	}
	if err := conn.AutoMigrate(schemaModels...); err != nil {
		return fmt.Errorf("auto migrate models: %w", err)
	}
	return nil
}
