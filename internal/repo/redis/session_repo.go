package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	authsvc "github.com/mohammadarifzafra/topgrade-api/internal/services/auth"
)

const sessionPrefix = "sessions:"

type SessionRepo struct {
	client *goredis.Client
}

func NewSessionRepo(client *goredis.Client) *SessionRepo {
	return &SessionRepo{client: client}
}

func (r *SessionRepo) Create(ctx context.Context, session authsvc.SessionRecord) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(session.SID) == "" || session.UserID <= 0 {
		return authsvc.ErrInvalidInput
	}

	ttl := ttlFor(session.ExpiresAt)
	if ttl <= 0 {
		return authsvc.ErrInvalidInput
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, sessionKey(session.SID), map[string]interface{}{
		"user_id":    session.UserID,
		"role":       session.Role,
		"expires_at": session.ExpiresAt.Unix(),
	})
	pipe.Expire(ctx, sessionKey(session.SID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create redis session: %w", err)
	}

	return nil
}

func (r *SessionRepo) GetSession(ctx context.Context, sid string) (authsvc.SessionRecord, error) {
	if r.client == nil {
		return authsvc.SessionRecord{}, fmt.Errorf("redis client is nil")
	}

	values, err := r.client.HGetAll(ctx, sessionKey(sid)).Result()
	if err != nil {
		return authsvc.SessionRecord{}, fmt.Errorf("get session hash: %w", err)
	}
	if len(values) == 0 {
		return authsvc.SessionRecord{}, authsvc.ErrSessionNotFound
	}

	userID, err := strconv.ParseInt(values["user_id"], 10, 64)
	if err != nil || userID <= 0 {
		return authsvc.SessionRecord{}, fmt.Errorf("parse session user id: %w", err)
	}
	expiresUnix, err := strconv.ParseInt(values["expires_at"], 10, 64)
	if err != nil {
		return authsvc.SessionRecord{}, fmt.Errorf("parse session expiry: %w", err)
	}

	return authsvc.SessionRecord{
		SID:       sid,
		UserID:    userID,
		Role:      values["role"],
		ExpiresAt: time.Unix(expiresUnix, 0).UTC(),
	}, nil
}

func (r *SessionRepo) DeleteSession(ctx context.Context, sid string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, sessionKey(sid)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func sessionKey(sid string) string {
	return sessionPrefix + sid
}

func ttlFor(expiresAt time.Time) time.Duration {
	return time.Until(expiresAt)
}
