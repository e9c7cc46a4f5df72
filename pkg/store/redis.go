package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/pidforge/pkg/document"
	pferrors "github.com/matzehuels/pidforge/pkg/errors"
)

// Redis key layout.
const (
	redisKeyPrefix = "pidforge:schematic:"
	redisIndexKey  = "pidforge:schematics"
)

// RedisStore keeps each document as a JSON string and tracks ids in a set.
type RedisStore struct {
	client *redis.Client
	owned  bool
}

// NewRedisStore wraps an existing client. The caller keeps ownership of the
// client; Close does not close it.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// DialRedisStore connects to addr and verifies the connection with PING.
func DialRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisStore{client: client, owned: true}, nil
}

func redisKey(id string) string { return redisKeyPrefix + id }

func (s *RedisStore) Save(ctx context.Context, doc *document.Document) error {
	if err := prepare(doc); err != nil {
		return err
	}
	data, err := document.Marshal(*doc)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKey(doc.ID), data, 0)
		pipe.SAdd(ctx, redisIndexKey, doc.ID)
		return nil
	})
	if err != nil {
		return pferrors.Wrap(pferrors.ErrCodeStorage, err, "save schematic %s", doc.ID)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (document.Document, error) {
	data, err := s.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return document.Document{}, notFound(id)
	}
	if err != nil {
		return document.Document{}, pferrors.Wrap(pferrors.ErrCodeStorage, err, "load schematic %s", id)
	}
	return document.Unmarshal(data)
}

func (s *RedisStore) List(ctx context.Context) ([]Summary, error) {
	ids, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, pferrors.Wrap(pferrors.ErrCodeStorage, err, "list schematics")
	}
	if len(ids) == 0 {
		return []Summary{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, pferrors.Wrap(pferrors.ErrCodeStorage, err, "list schematics")
	}

	out := make([]Summary, 0, len(values))
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue // indexed but expired or deleted out of band
		}
		doc, err := document.Unmarshal([]byte(str))
		if err != nil {
			continue
		}
		out = append(out, summarize(doc))
	}
	sortSummaries(out)
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, redisKey(id))
		pipe.SRem(ctx, redisIndexKey, id)
		return nil
	})
	if err != nil {
		return pferrors.Wrap(pferrors.ErrCodeStorage, err, "delete schematic %s", id)
	}
	if del.Val() == 0 {
		return notFound(id)
	}
	return nil
}

// Close closes the client if this store dialed it.
func (s *RedisStore) Close() error {
	if s.owned {
		return s.client.Close()
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
