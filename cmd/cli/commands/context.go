package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/mvdbrink/teamplanner/internal/config"
	"github.com/mvdbrink/teamplanner/pkg/db"
	"github.com/mvdbrink/teamplanner/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Store    db.PlanningStore
	Database *postgres.DB
	Logger   *zap.Logger
	Ctx      context.Context
}
