// File: services/session/store.go
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"slotify/models"

	"github.com/go-redis/redis/v8"
)

const sessionPrefix = "agentSession:"

// Store persists per-conversation tool invocation history for the external
// agent. The scheduling core treats it as an opaque collaborator: entries go
// in via Append or Put and come back out via Get, nothing is interpreted.
type Store interface {
	Get(ctx context.Context, sessionID string) (*models.AgentSession, error)
	Put(ctx context.Context, sessionID string, entries []models.SessionEntry) error
	Append(ctx context.Context, sessionID string, entry models.SessionEntry) error
}

// RedisStore keeps each session as a Redis list of JSON entries with a
// sliding TTL.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisStore constructs a session store backed by the given Redis client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, TTL: ttl}
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*models.AgentSession, error) {
	raw, err := s.Client.LRange(ctx, sessionPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session %s: %w", sessionID, err)
	}

	entries := make([]models.SessionEntry, 0, len(raw))
	for _, item := range raw {
		var entry models.SessionEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return &models.AgentSession{ID: sessionID, Entries: entries}, nil
}

func (s *RedisStore) Put(ctx context.Context, sessionID string, entries []models.SessionEntry) error {
	key := sessionPrefix + sessionID

	items := make([]interface{}, 0, len(entries))
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal session entry: %w", err)
		}
		items = append(items, data)
	}

	pipe := s.Client.TxPipeline()
	pipe.Del(ctx, key)
	if len(items) > 0 {
		pipe.RPush(ctx, key, items...)
		pipe.Expire(ctx, key, s.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store session %s: %w", sessionID, err)
	}
	return nil
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, entry models.SessionEntry) error {
	key := sessionPrefix + sessionID

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal session entry: %w", err)
	}

	pipe := s.Client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, s.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to session %s: %w", sessionID, err)
	}
	return nil
}
