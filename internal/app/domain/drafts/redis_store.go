package drafts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/FACorreiaa/backpackor/internal/app/models"
)

var _ Store = (*RedisStore)(nil)

// RedisStore keeps drafts in Redis with a sliding TTL.
type RedisStore struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisStore(rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, logger: logger}
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Connected to Redis", zap.String("addr", addr))
	return rdb, nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (models.Draft, error) {
	data, err := s.rdb.Get(ctx, draftKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Draft{}, models.ErrNoDraft
	}
	if err != nil {
		s.logger.Error("Failed to load draft", zap.String("session", sessionID), zap.Error(err))
		return models.Draft{}, fmt.Errorf("failed to load draft: %w", err)
	}
	return Decode(data)
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, draft models.Draft) error {
	data, err := Encode(draft)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, draftKey(sessionID), data, s.ttl).Err(); err != nil {
		s.logger.Error("Failed to save draft", zap.String("session", sessionID), zap.Error(err))
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, draftKey(sessionID)).Err(); err != nil {
		s.logger.Error("Failed to clear draft", zap.String("session", sessionID), zap.Error(err))
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}
