// internal/engine/memory/redis.go
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"segment-insights/internal/common/errors"
)

// RedisStore persists session transcripts so conversations survive a
// restart. Each session is a Redis list of JSON-encoded turns trimmed
// to the same bound the in-process buffer uses.
type RedisStore struct {
	client   *redis.Client
	maxTurns int
	ttl      time.Duration
}

func NewRedisStore(client *redis.Client, maxTurns int, ttl time.Duration) *RedisStore {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &RedisStore{client: client, maxTurns: maxTurns, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("chat:session:%s:turns", sessionID)
}

// AppendExchange persists one user/assistant exchange for a session.
func (s *RedisStore) AppendExchange(ctx context.Context, sessionID, query, response string) error {
	now := time.Now()
	turns := []Turn{
		{Role: RoleUser, Content: query, Timestamp: now},
		{Role: RoleAssistant, Content: response, Timestamp: now},
	}

	values := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		encoded, err := json.Marshal(t)
		if err != nil {
			return errors.NewSessionStoreFailedError(err)
		}
		values = append(values, encoded)
	}

	key := sessionKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, int64(-s.maxTurns*2), -1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.NewSessionStoreFailedError(err)
	}
	return nil
}

// Load returns a session's buffered turns, oldest first.
func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]Turn, error) {
	raw, err := s.client.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, errors.NewSessionStoreFailedError(err)
	}

	turns := make([]Turn, 0, len(raw))
	for _, item := range raw {
		var t Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, errors.NewSessionStoreFailedError(err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// Clear removes a session's transcript.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return errors.NewSessionStoreFailedError(err)
	}
	return nil
}
