// Package session persists FlowContext documents between chat turns.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"leadflow-workers/internal/common/errors"
	"leadflow-workers/internal/models"
)

// Store is a Redis-backed session store. Every Save refreshes the TTL.
type Store struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewStore(client redis.Cmdable, prefix string, ttl time.Duration) *Store {
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

// Load returns the stored context. found is false when the session is new or expired.
func (s *Store) Load(ctx context.Context, sessionID string) (fc models.FlowContext, found bool, err error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return models.FlowContext{}, false, nil
	}
	if err != nil {
		return models.FlowContext{}, false, errors.NewSessionStoreFailedError("load", err)
	}
	if err := json.Unmarshal(raw, &fc); err != nil {
		return models.FlowContext{}, false, errors.NewSessionStoreFailedError("load", fmt.Errorf("decode: %w", err))
	}
	if fc.Responses == nil {
		fc.Responses = map[string]string{}
	}
	return fc, true, nil
}

func (s *Store) Save(ctx context.Context, fc models.FlowContext) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return errors.NewSessionStoreFailedError("save", err)
	}
	if err := s.client.Set(ctx, s.key(fc.SessionID), data, s.ttl).Err(); err != nil {
		return errors.NewSessionStoreFailedError("save", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return errors.NewSessionStoreFailedError("delete", err)
	}
	return nil
}
