package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DraftKeyPrefix namespaces draft keys in redis
const DraftKeyPrefix = "catalogue-draft:"

// RedisDraftStore keeps drafts as redis hashes holding the payload and a version counter
type RedisDraftStore struct {
	Client *redis.Client
}

// NewRedisDraftStore creates a draft store over client
func NewRedisDraftStore(client *redis.Client) *RedisDraftStore {
	return &RedisDraftStore{Client: client}
}

func draftKey(owner string) string {
	return DraftKeyPrefix + owner
}

// Save overwrites the owner's draft and increments its version. With an
// expected version the key is watched so a concurrent save fails the check.
func (s *RedisDraftStore) Save(ctx context.Context, owner string, values Values, expected *uint64) (uint64, error) {
	payload, err := json.Marshal(values)
	if err != nil {
		return 0, fmt.Errorf("failed to encode draft: %w", err)
	}

	key := draftKey(owner)
	var incr *redis.IntCmd
	write := func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "payload", payload)
		incr = pipe.HIncrBy(ctx, key, "version", 1)
		return nil
	}

	if expected == nil {
		if _, err := s.Client.TxPipelined(ctx, write); err != nil {
			return 0, fmt.Errorf("failed to save draft for %s: %w", owner, err)
		}
		return uint64(incr.Val()), nil
	}

	err = s.Client.Watch(ctx, func(tx *redis.Tx) error {
		stored, err := tx.HGet(ctx, key, "version").Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if stored != *expected {
			return versionConflict(owner, expected, stored)
		}
		_, err = tx.TxPipelined(ctx, write)
		return err
	}, key)

	switch {
	case errors.Is(err, redis.TxFailedErr):
		return 0, fmt.Errorf("%w - draft for %s was modified concurrently", ErrVersion, owner)
	case errors.Is(err, ErrVersion):
		return 0, err
	case err != nil:
		return 0, fmt.Errorf("failed to save draft for %s: %w", owner, err)
	}
	return uint64(incr.Val()), nil
}

// Load returns the owner's draft and its version
func (s *RedisDraftStore) Load(ctx context.Context, owner string) (Values, uint64, error) {
	var draft struct {
		Payload string `redis:"payload"`
		Version uint64 `redis:"version"`
	}

	cmd := s.Client.HGetAll(ctx, draftKey(owner))
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, 0, ErrDraftNotFound
		}
		return nil, 0, err
	}
	if len(cmd.Val()) == 0 {
		return nil, 0, ErrDraftNotFound
	}
	if err := cmd.Scan(&draft); err != nil {
		return nil, 0, fmt.Errorf("failed to read draft: %w", err)
	}

	values := make(Values)
	if draft.Payload != "" {
		if err := json.Unmarshal([]byte(draft.Payload), &values); err != nil {
			return nil, 0, fmt.Errorf("failed to decode draft: %w", err)
		}
	}
	return values, draft.Version, nil
}
