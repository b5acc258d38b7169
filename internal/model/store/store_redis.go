package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"graphtrust/internal/model"
	"graphtrust/pkg/platform/sentinel"
)

const (
	redisKeyPrefix   = "graphtrust:model:"
	redisVersionsKey = redisKeyPrefix + "versions"
	redisActiveKey   = redisKeyPrefix + "active"
	redisArtifactKey = redisKeyPrefix + "artifact:"
)

// RedisRegistry shares model versions across instances through Redis.
// Metadata lives in one hash keyed by version id; the active id is a plain key.
type RedisRegistry struct {
	client *redis.Client
	opts   options
}

// NewRedis constructs a Redis-backed registry. The client lifecycle is
// managed by the caller.
func NewRedis(client *redis.Client, opts ...Option) *RedisRegistry {
	return &RedisRegistry{client: client, opts: applyOptions(opts)}
}

func (s *RedisRegistry) Save(ctx context.Context, v model.Version, artifact []byte) error {
	v.Active = false
	meta, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode model version: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisArtifactKey+v.ID.String(), artifact, 0)
		pipe.HSet(ctx, redisVersionsKey, v.ID.String(), meta)
		pipe.Set(ctx, redisActiveKey, v.ID.String(), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save model version: %w", err)
	}
	return s.prune(ctx)
}

func (s *RedisRegistry) Active(ctx context.Context) (*model.Version, error) {
	id, err := s.client.Get(ctx, redisActiveKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active model: %w", err)
	}
	raw, err := s.client.HGet(ctx, redisVersionsKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get model version: %w", err)
	}
	v, err := decodeVersion(raw)
	if err != nil {
		return nil, err
	}
	v.Active = true
	return &v, nil
}

func (s *RedisRegistry) Load(ctx context.Context, id uuid.UUID) ([]byte, error) {
	blob, err := s.client.Get(ctx, redisArtifactKey+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load model artifact: %w", err)
	}
	return blob, nil
}

func (s *RedisRegistry) List(ctx context.Context) ([]model.Version, error) {
	raw, err := s.client.HGetAll(ctx, redisVersionsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list model versions: %w", err)
	}
	active, err := s.client.Get(ctx, redisActiveKey).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("get active model: %w", err)
	}
	versions := make([]model.Version, 0, len(raw))
	for id, meta := range raw {
		v, err := decodeVersion(meta)
		if err != nil {
			return nil, err
		}
		v.Active = id == active
		versions = append(versions, v)
	}
	sortNewestFirst(versions)
	return versions, nil
}

func (s *RedisRegistry) Activate(ctx context.Context, id uuid.UUID) error {
	exists, err := s.client.HExists(ctx, redisVersionsKey, id.String()).Result()
	if err != nil {
		return fmt.Errorf("check model version: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	if err := s.client.Set(ctx, redisActiveKey, id.String(), 0).Err(); err != nil {
		return fmt.Errorf("activate model version: %w", err)
	}
	return nil
}

func (s *RedisRegistry) prune(ctx context.Context) error {
	versions, err := s.List(ctx)
	if err != nil {
		return err
	}
	dropped := prune(versions, s.opts.retention)
	if len(dropped) == 0 {
		return nil
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, v := range dropped {
			pipe.Del(ctx, redisArtifactKey+v.ID.String())
			pipe.HDel(ctx, redisVersionsKey, v.ID.String())
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("prune model versions: %w", err)
	}
	return nil
}

func decodeVersion(raw string) (model.Version, error) {
	var v model.Version
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, fmt.Errorf("%w: model version: %v", sentinel.ErrCorrupt, err)
	}
	return v, nil
}
