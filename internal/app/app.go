package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"session-planner/internal/cache"
	"session-planner/internal/config"
)

type App struct {
	DB    *pgxpool.Pool
	Log   *zap.Logger
	Cache *cache.SuggestionCache // nil when redis is not configured
	Cfg   *config.Config
}
