package storage

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/mansion-engine/pkg/scenario"
	"github.com/jwebster45206/mansion-engine/pkg/storage"
)

// DefaultSessionTTL bounds how long an idle game is kept.
const DefaultSessionTTL = time.Hour

// RedisStorage implements storage.Storage using Redis for game sessions and
// the filesystem for scenarios. Scenarios in dataDir/scenarios shadow the
// embedded ones of the same file name.
type RedisStorage struct {
	client     *redis.Client
	logger     *slog.Logger
	sessionTTL time.Duration
	scenarios  []fs.FS // Searched in order
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisClient accepts either a redis:// URL or a bare host:port.
func NewRedisClient(redisURL string) (*redis.Client, error) {
	if !strings.Contains(redisURL, "://") {
		return redis.NewClient(&redis.Options{Addr: redisURL}), nil
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return redis.NewClient(opt), nil
}

// NewRedisStorage creates a Redis storage instance. An empty dataDir serves
// only the embedded scenarios.
func NewRedisStorage(client *redis.Client, dataDir string, sessionTTL time.Duration, logger *slog.Logger) *RedisStorage {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}

	var scenarios []fs.FS
	if dataDir != "" {
		dir := filepath.Join(dataDir, "scenarios")
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			scenarios = append(scenarios, os.DirFS(dir))
		} else {
			logger.Warn("Scenario directory not found, using builtin scenarios only", "path", dir)
		}
	}
	scenarios = append(scenarios, scenario.BuiltinFS())

	return &RedisStorage{
		client:     client,
		logger:     logger,
		sessionTTL: sessionTTL,
		scenarios:  scenarios,
	}
}

// Client returns the underlying Redis client for pub/sub.
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}
