package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vcc/internal/auth/models"
	"vcc/pkg/domain"
	"vcc/pkg/platform/sentinel"
)

const keyPrefix = "session:"

// RedisStore keeps sessions as JSON values that expire with the session.
type RedisStore struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewRedis(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

type redisSession struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	UserAgent string    `json:"user_agent"`
	Device    string    `json:"device"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func key(hash string) string {
	return keyPrefix + hash
}

func (s *RedisStore) Create(ctx context.Context, session *models.Session) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}
	payload, err := json.Marshal(redisSession{
		ID:        session.ID.String(),
		ProfileID: session.ProfileID.String(),
		UserAgent: session.UserAgent,
		Device:    session.Device,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ok, err := s.client.SetNX(ctx, key(session.TokenHash), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *RedisStore) FindByTokenHash(ctx context.Context, hash string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, key(hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var stored redisSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	id, err := parseSessionID(stored.ID)
	if err != nil {
		return nil, err
	}
	profileID, err := parseProfileID(stored.ProfileID)
	if err != nil {
		return nil, err
	}
	return &models.Session{
		ID:        id,
		TokenHash: hash,
		ProfileID: profileID,
		UserAgent: stored.UserAgent,
		Device:    stored.Device,
		CreatedAt: stored.CreatedAt,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}

func (s *RedisStore) DeleteByTokenHash(ctx context.Context, hash string) error {
	n, err := s.client.Del(ctx, key(hash)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func parseSessionID(s string) (domain.SessionID, error) {
	id, err := domain.ParseSessionID(s)
	if err != nil {
		return domain.SessionID{}, fmt.Errorf("decode session id: %w", err)
	}
	return id, nil
}

func parseProfileID(s string) (domain.ProfileID, error) {
	id, err := domain.ParseProfileID(s)
	if err != nil {
		return domain.ProfileID{}, fmt.Errorf("decode profile id: %w", err)
	}
	return id, nil
}
