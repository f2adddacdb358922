package main

import (
	"context"

	"job-board-api/internal/cache"
	"job-board-api/internal/config"
	"job-board-api/internal/database"
	"job-board-api/internal/logging"
	"job-board-api/internal/routes"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogPretty)

	// Init database
	database.InitDB(cfg.DBPath)

	// Pick the cache store: Redis when configured, in-process otherwise
	var store cache.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPassword,
		})
		redisStore := cache.NewRedisStore(rdb, cfg.CacheTTL)
		if err := redisStore.Ping(context.Background()); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
		}
		logger.Info().Str("addr", cfg.RedisAddr).Dur("default_ttl", cfg.CacheTTL).Msg("Redis cache connected")
		store = redisStore
	} else {
		logger.Warn().Msg("REDIS_ADDR not set; falling back to in-process memory cache")
		store = cache.NewMemoryStore(cfg.CacheTTL)
	}

	// Setup the routes around the cache orchestrator
	ginRoutes := routes.SetupRoutes(cache.NewOrchestrator(store))

	logger.Info().Str("port", cfg.Port).Msg("Server starting")
	if err := ginRoutes.Run(cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start server")
	}
}
