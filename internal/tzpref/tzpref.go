// Package tzpref looks up a user's stored timezone preference. The stored
// value is ground truth; nothing here guesses or infers a zone.
package tzpref

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var ErrPreferenceNotFound = errors.New("timezone preference not found")

// Service reads preferences from Postgres through a Redis cache. Cache
// problems degrade to a direct read, never to a failed lookup.
type Service struct {
	pool  *pgxpool.Pool
	cache *redis.Client
	ttl   time.Duration
	log   zerolog.Logger
}

func NewService(pool *pgxpool.Pool, cache *redis.Client, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{pool: pool, cache: cache, ttl: ttl, log: log}
}

func cacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("tzpref:%s", userID)
}

// TimezoneFor returns the IANA zone name stored for the user.
func (s *Service) TimezoneFor(ctx context.Context, userID uuid.UUID) (string, error) {
	if s.cache != nil {
		zone, err := s.cache.Get(ctx, cacheKey(userID)).Result()
		if err == nil && zone != "" {
			return zone, nil
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("user_id", userID.String()).Msg("tzpref cache read failed")
		}
	}

	var zone string
	err := s.pool.QueryRow(ctx, `
		SELECT timezone FROM user_timezone_preferences WHERE user_id = $1
	`, userID).Scan(&zone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrPreferenceNotFound
		}
		return "", fmt.Errorf("load timezone preference: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey(userID), zone, s.ttl).Err(); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID.String()).Msg("tzpref cache write failed")
		}
	}

	return zone, nil
}

// SetTimezoneFor stores the preference and invalidates the cached entry.
func (s *Service) SetTimezoneFor(ctx context.Context, userID uuid.UUID, zone string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_timezone_preferences (user_id, timezone, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE SET timezone = EXCLUDED.timezone, updated_at = now()
	`, userID, zone)
	if err != nil {
		return fmt.Errorf("store timezone preference: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, cacheKey(userID)).Err(); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID.String()).Msg("tzpref cache invalidation failed")
		}
	}
	return nil
}
