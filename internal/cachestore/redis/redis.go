package redis

import (
	"context"
	"encoding/json"
	"strings"

	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"offline-gateway/internal/config"
	"offline-gateway/internal/interfaces"
	"offline-gateway/internal/models"
)

// keyPrefix scopes every gateway key in the shared redis keyspace. The full
// key layout is "og:<namespace>:<request key>"; namespace names never
// contain a colon.
const keyPrefix = "og:"

// Ensure Store implements interfaces.Store
var _ interfaces.Store = (*Store)(nil)

// Store implements the namespace store on Redis. A namespace is a key
// prefix; deleting a namespace scans and deletes the prefix.
type Store struct {
	client interfaces.RedisClient
	cfg    *config.RedisStoreConfig
	logger *zap.Logger
}

// NewStore creates a new redis-backed namespace store.
func NewStore(cfg *config.RedisStoreConfig, client interfaces.RedisClient, logger *zap.Logger) *Store {
	return &Store{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// NewClient dials redis using the configured URL.
func NewClient(cfg *config.RedisStoreConfig) (interfaces.RedisClient, error) {
	opts, err := goredis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout
	return goredis.NewClient(opts), nil
}

func redisKey(namespace, key string) string {
	return keyPrefix + namespace + ":" + key
}

// Match retrieves the entry stored under key in the given namespace.
func (s *Store) Match(ctx context.Context, namespace, key string) (*models.CachedEntry, bool) {
	rctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	data, err := s.client.Get(rctx, redisKey(namespace, key)).Result()
	if err != nil {
		if err != goredis.Nil {
			s.logger.Error("Redis cache get error",
				zap.String("namespace", namespace), zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var entry models.CachedEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		s.logger.Error("Failed to unmarshal cache entry",
			zap.String("namespace", namespace), zap.String("key", key), zap.Error(err))
		s.client.Del(context.Background(), redisKey(namespace, key))
		return nil, false
	}

	return &entry, true
}

// Put stores an entry under key. Entries carry no expiration; the namespace
// is deleted wholesale on version cutover.
func (s *Store) Put(ctx context.Context, namespace, key string, entry *models.CachedEntry) error {
	wctx, cancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
	defer cancel()

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return s.client.Set(wctx, redisKey(namespace, key), data, 0).Err()
}

// DeleteNamespace removes every key under the namespace prefix.
func (s *Store) DeleteNamespace(ctx context.Context, namespace string) error {
	pattern := keyPrefix + namespace + ":*"

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Namespaces lists the distinct namespace names present in redis.
func (s *Store) Namespaces(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})

	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			rest := strings.TrimPrefix(key, keyPrefix)
			if idx := strings.Index(rest, ":"); idx > 0 {
				seen[rest[:idx]] = struct{}{}
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	return names, nil
}

// Close closes the underlying client connection.
func (s *Store) Close() error {
	return s.client.Close()
}
