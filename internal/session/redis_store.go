package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "interview:session:"

// RedisStore keeps one JSON record per session keyed by session id.
type RedisStore struct {
	rdb            *redis.Client
	ttl            time.Duration
	questionBudget int
}

func NewRedisStore(redisAddr string, ttl time.Duration, questionBudget int) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	return &RedisStore{
		rdb:            rdb,
		ttl:            ttl,
		questionBudget: questionBudget,
	}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (rs *RedisStore) Create(ctx context.Context, phoneNumber string) (*Session, error) {
	s := &Session{
		ID:             "interview_" + uuid.New().String(),
		PhoneNumber:    phoneNumber,
		StartedAt:      time.Now().UTC(),
		Status:         StatusStarting,
		QuestionBudget: rs.questionBudget,
		Turns:          []Turn{},
	}

	if err := rs.Save(ctx, s); err != nil {
		return nil, err
	}

	log.Printf("[SessionStore] Created session %s", s.ID)
	return s, nil
}

func (rs *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := rs.rdb.Set(ctx, sessionKey(s.ID), data, rs.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session to Redis: %w", err)
	}

	return nil
}

func (rs *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	data, err := rs.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session from Redis: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		// corrupted record, treat as absent
		log.Printf("[SessionStore] Discarding corrupted session %s: %v", id, err)
		return nil, ErrNotFound
	}

	if !s.Valid() {
		log.Printf("[SessionStore] Discarding invalid session %s", id)
		return nil, ErrNotFound
	}

	return &s, nil
}

func (rs *RedisStore) Clear(ctx context.Context, id string) error {
	if err := rs.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to clear session from Redis: %w", err)
	}
	return nil
}

func (rs *RedisStore) Ping(ctx context.Context) error {
	return rs.rdb.Ping(ctx).Err()
}
