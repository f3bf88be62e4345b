package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/domain/drafts"
	"github.com/FACorreiaa/backpackor/internal/app/domain/suggest"
	database "github.com/FACorreiaa/backpackor/internal/db"
	"github.com/FACorreiaa/backpackor/internal/pkg/config"
	"github.com/FACorreiaa/backpackor/internal/pkg/storage"
	"github.com/FACorreiaa/backpackor/internal/routes"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	dbPool *pgxpool.Pool
	redis  *redis.Client
	bucket *storage.BucketStorage
	deps   routes.Dependencies
	router http.Handler
}

// New connects to Postgres (running migrations), Redis and the image bucket.
// Redis, the bucket and the model are optional; missing ones fall back to an
// in-process draft store, disabled uploads and disabled suggestions.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Server, error) {
	s := &Server{cfg: cfg, logger: logger}

	dbPool, err := s.setupDatabase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}
	s.dbPool = dbPool

	s.deps = routes.Dependencies{
		Config:  cfg,
		Logger:  logger,
		DB:      dbPool,
		Drafts:  s.setupDraftStore(ctx),
		Storage: s.setupStorage(ctx),
	}

	if cfg.AI.GeminiAPIKey != "" {
		gen, err := suggest.NewGeminiGenerator(ctx, cfg.AI.GeminiAPIKey, cfg.AI.Model)
		if err != nil {
			logger.Warn("Itinerary suggestions disabled", zap.Error(err))
		} else {
			s.deps.Generator = gen
		}
	} else {
		logger.Info("GEMINI_API_KEY not set, itinerary suggestions disabled")
	}

	return s, nil
}

// setupDatabase initializes the database connection and runs migrations
func (s *Server) setupDatabase(ctx context.Context) (*pgxpool.Pool, error) {
	s.logger.Info("Setting up database connection and migrations")

	dbConfig, err := database.NewDatabaseConfig(s.cfg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database configuration: %w", err)
	}

	pool, err := database.Init(dbConfig, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}

	if !database.WaitForDB(ctx, pool, s.logger) {
		pool.Close()
		return nil, fmt.Errorf("database did not become ready")
	}
	s.logger.Info("Connected to Postgres",
		zap.String("host", s.cfg.Repositories.Postgres.Host),
		zap.String("port", s.cfg.Repositories.Postgres.Port),
		zap.String("database", s.cfg.Repositories.Postgres.DB))

	if err = database.RunMigrations(dbConfig.ConnectionURL, s.logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	s.logger.Info("Database setup completed successfully")
	return pool, nil
}

func (s *Server) setupDraftStore(ctx context.Context) drafts.Store {
	ttl := s.cfg.Planner.DraftTTL
	rc := s.cfg.Repositories.Redis
	if rc.Addr == "" {
		s.logger.Info("REDIS_ADDR not set, keeping planner drafts in memory")
		return drafts.NewMemoryStore(ttl)
	}

	client, err := drafts.NewRedisClient(ctx, rc.Addr, rc.Password, rc.DB, s.logger)
	if err != nil {
		s.logger.Warn("Redis unavailable, keeping planner drafts in memory", zap.Error(err))
		return drafts.NewMemoryStore(ttl)
	}
	s.redis = client
	return drafts.NewRedisStore(client, ttl, s.logger)
}

func (s *Server) setupStorage(ctx context.Context) storage.Storage {
	sc := s.cfg.Storage
	if sc.Bucket == "" {
		s.logger.Info("GCS_BUCKET_NAME not set, image uploads disabled")
		return storage.Disabled{}
	}
	bucket, err := storage.NewBucketStorage(ctx, sc.Bucket, sc.CDNDomain, s.logger)
	if err != nil {
		s.logger.Warn("Object storage unavailable, image uploads disabled", zap.Error(err))
		return storage.Disabled{}
	}
	s.bucket = bucket
	return bucket
}

// HTTPServer creates and configures the HTTP server
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.ServerPort,
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
	}
}

// SetRouter sets the HTTP router/handler
func (s *Server) SetRouter(router http.Handler) {
	s.router = router
}

func (s *Server) Dependencies() routes.Dependencies {
	return s.deps
}

// Close closes all server resources
func (s *Server) Close() {
	if s.bucket != nil {
		if err := s.bucket.Close(); err != nil {
			s.logger.Warn("Failed to close storage client", zap.Error(err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
	if s.dbPool != nil {
		s.dbPool.Close()
	}
}
