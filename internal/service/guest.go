package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const guestKeyPrefix = "guest_scope:"

// GuestService mints and validates ephemeral guest scope tokens for
// anonymous callers. Each browser session gets its own token, so anonymous
// histories are isolated from each other the same way user scopes are.
type GuestService interface {
	Issue(ctx context.Context) (string, error)
	Validate(ctx context.Context, token string) (bool, error)
}

type guestService struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewGuestService(client *redis.Client, ttl time.Duration) GuestService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &guestService{redis: client, ttl: ttl}
}

func (s *guestService) Issue(ctx context.Context) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating guest token: %w", err)
	}
	token := hex.EncodeToString(b)

	if err := s.redis.Set(ctx, guestKeyPrefix+token, 1, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("storing guest token: %w", err)
	}

	slog.DebugContext(ctx, "issued guest scope", "ttl", s.ttl)
	return token, nil
}

// Validate reports whether the token is live and, if so, slides its expiry.
func (s *guestService) Validate(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	err := s.redis.Get(ctx, guestKeyPrefix+token).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up guest token: %w", err)
	}

	if err := s.redis.Expire(ctx, guestKeyPrefix+token, s.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "failed to refresh guest token ttl", "error", err)
	}

	return true, nil
}
