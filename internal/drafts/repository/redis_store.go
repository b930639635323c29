package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pcbuildsite/pcbuild-backend/internal/drafts/domain"
)

const (
	DefaultDraftsKey = "pcbuild:drafts" // whole collection as one JSON list
	maxTxRetries     = 10
)

var errTxRetriesExhausted = errors.New("too many concurrent modifications")

// RedisStore keeps the same single JSON collection as FileStore, stored under
// one redis key. Mutations run as WATCH/MULTI transactions and are retried when
// another writer touched the key in between.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

func NewRedisStore(client *redis.Client, key string, logger *zap.Logger) *RedisStore {
	if key == "" {
		key = DefaultDraftsKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{
		client: client,
		key:    key,
		logger: logger.With(zap.String("store", "redis"), zap.String("key", key)),
	}
}

func (s *RedisStore) Load(ctx context.Context) ([]domain.Draft, error) {
	return s.load(ctx, s.client)
}

func (s *RedisStore) Append(ctx context.Context, build BuildFunc) (domain.Draft, error) {
	var record domain.Draft
	var buildErr error

	txf := func(tx *redis.Tx) error {
		current, err := s.load(ctx, tx)
		if err != nil {
			return &domain.PersistError{Op: "read", Err: err}
		}

		record, buildErr = build(current)
		if buildErr != nil {
			return buildErr
		}

		data, err := encodeCollection(append(current, record))
		if err != nil {
			return &domain.PersistError{Op: "encode", Err: err}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, 0)
			return nil
		})
		return err
	}

	if err := s.watch(ctx, txf); err != nil {
		if buildErr != nil {
			return domain.Draft{}, buildErr
		}
		return domain.Draft{}, err
	}
	return record, nil
}

func (s *RedisStore) Delete(ctx context.Context, id int) (bool, error) {
	var removed bool

	txf := func(tx *redis.Tx) error {
		current, err := s.load(ctx, tx)
		if err != nil {
			return &domain.PersistError{Op: "read", Err: err}
		}

		var kept []domain.Draft
		kept, removed = removeDraft(current, id)
		if !removed {
			return nil
		}

		data, err := encodeCollection(kept)
		if err != nil {
			return &domain.PersistError{Op: "encode", Err: err}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, 0)
			return nil
		})
		return err
	}

	if err := s.watch(ctx, txf); err != nil {
		return false, err
	}
	return removed, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// watch runs txf under WATCH on the collection key, retrying on conflicts.
func (s *RedisStore) watch(ctx context.Context, txf func(tx *redis.Tx) error) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, s.key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			s.logger.Debug("draft collection changed during transaction, retrying", zap.Int("attempt", i+1))
			continue
		}

		var perr *domain.PersistError
		if errors.As(err, &perr) {
			return err
		}
		return &domain.PersistError{Op: "write", Err: err}
	}
	return &domain.PersistError{Op: "write", Err: errTxRetriesExhausted}
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) load(ctx context.Context, c getter) ([]domain.Draft, error) {
	data, err := c.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return []domain.Draft{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.key, err)
	}

	drafts, err := decodeCollection(data)
	if err != nil {
		s.logger.Warn("draft collection is not a valid JSON list, treating it as empty", zap.Error(err))
		return []domain.Draft{}, nil
	}
	warnPassthrough(s.logger, drafts)
	return drafts, nil
}
