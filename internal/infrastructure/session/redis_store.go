package session

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/recipe-api/internal/domain/entity"
)

// RedisStore tracks issued tokens so they can be revoked before expiry.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func Key(userID int64, sessionID string) string {
	return "user:session:" + strconv.FormatInt(userID, 10) + ":" + sessionID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func (s *RedisStore) Create(ctx context.Context, sess entity.Session, ttl time.Duration) error {
	key := Key(sess.UserID, sess.ID)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    sess.UserID,
		"email":      sess.Email,
		"name":       sess.Name,
		"sid":        sess.ID,
		"created_at": nowRFC3339(),
	})
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Exists(ctx context.Context, userID int64, sessionID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, Key(userID, sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Delete(ctx context.Context, userID int64, sessionID string) error {
	return s.rdb.Del(ctx, Key(userID, sessionID)).Err()
}

// Touch refreshes cached profile fields while keeping the remaining TTL.
func (s *RedisStore) Touch(ctx context.Context, sess entity.Session) error {
	key := Key(sess.UserID, sess.ID)
	ttl, err := s.rdb.TTL(ctx, key).Result()
	if err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"email":      sess.Email,
		"name":       sess.Name,
		"updated_at": nowRFC3339(),
	})
	pipe.Expire(ctx, key, ttl)
	_, err = pipe.Exec(ctx)
	return err
}
