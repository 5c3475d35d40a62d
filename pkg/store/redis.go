package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/datamapper/pkg/schema"
)

// DefaultRedisPrefix namespaces every key the redis store writes.
const DefaultRedisPrefix = "datamapper:"

// RedisOptions configures the redis connection.
type RedisOptions struct {
	// URL is the connection string (e.g., "redis://localhost:6379/0").
	URL string

	// Prefix is prepended to every key. Defaults to DefaultRedisPrefix.
	Prefix string

	// ConnectTimeout bounds the initial ping.
	ConnectTimeout time.Duration
}

// RedisStore keeps each snapshot as a JSON value under <prefix>snapshot:<root>
// and tracks roots in the set <prefix>roots.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultRedisPrefix
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	redisOpts.DialTimeout = opts.ConnectTimeout
	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, storeErr(err, "connect to redis")
	}
	return &RedisStore{client: client, prefix: opts.Prefix}, nil
}

func (s *RedisStore) key(root string) string { return s.prefix + "snapshot:" + root }
func (s *RedisStore) rootsKey() string       { return s.prefix + "roots" }

func (s *RedisStore) Load(ctx context.Context, root string) (snap *schema.Snapshot, err error) {
	defer func(start time.Time) { observeLoad(ctx, BackendRedis, root, start, err) }(time.Now())

	if err := checkRoot(root); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(root)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, notFound(root)
	}
	if err != nil {
		return nil, storeErr(err, "get %s", root)
	}
	return decode(data)
}

func (s *RedisStore) Save(ctx context.Context, root string, snap *schema.Snapshot) (err error) {
	var size int
	defer func(start time.Time) { observeSave(ctx, BackendRedis, root, size, start, err) }(time.Now())

	if err := checkRoot(root); err != nil {
		return err
	}
	data, err := encode(snap)
	if err != nil {
		return err
	}
	size = len(data)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(root), data, 0)
	pipe.SAdd(ctx, s.rootsKey(), root)
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr(err, "set %s", root)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, root string) error {
	if err := checkRoot(root); err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(root))
	pipe.SRem(ctx, s.rootsKey(), root)
	if _, err := pipe.Exec(ctx); err != nil {
		return storeErr(err, "delete %s", root)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	roots, err := s.client.SMembers(ctx, s.rootsKey()).Result()
	if err != nil {
		return nil, storeErr(err, "list roots")
	}
	slices.Sort(roots)
	return roots, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
