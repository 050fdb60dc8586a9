// Package redis stores flow documents in Redis.
//
// Each flow is a JSON string under <prefix><id>. A sorted set at
// <prefix>index scores ids by their last update time so List can return
// flows newest first without scanning the keyspace.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	backend "github.com/redis/go-redis/v9"

	"github.com/matzehuels/ivrflow/pkg/document"
	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/store"
)

// DefaultPrefix is the key prefix used unless [WithPrefix] is given.
const DefaultPrefix = "ivrflow:flow:"

// Store implements [store.Store] on Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
	log    *log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets an expiration for stored flows. Zero (the default) keeps
// flows forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New connects to the Redis server at address.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
		now:    time.Now,
		log:    log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(id string) string { return s.prefix + id }

func (s *Store) indexKey() string { return s.prefix + "index" }

// Save writes d and updates the index in one pipeline.
func (s *Store) Save(ctx context.Context, d *document.Document) error {
	store.Prepare(d, s.now())

	data, err := document.Marshal(d)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "marshal flow")
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(d.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(d.UpdatedAt.UnixMilli()),
		Member: d.ID,
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return errs.Wrap(errs.ErrCodeNetwork, err, "save flow to redis")
	}
	s.log.Debug("flow saved", "backend", "redis", "id", d.ID)
	return nil
}

// Load reads the flow with the given id.
func (s *Store) Load(ctx context.Context, id string) (*document.Document, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, store.NotFound(id)
		}
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "get flow from redis")
	}
	return document.Unmarshal(val)
}

// List returns flows newest first. Index entries whose value has expired are
// pruned as they are found.
func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "list flows")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeNetwork, err, "list flows")
	}

	out := make([]store.Summary, 0, len(ids))
	var stale []any
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		d, err := document.Unmarshal([]byte(raw))
		if err != nil {
			s.log.Warn("skipping unreadable flow", "id", ids[i], "err", err)
			continue
		}
		out = append(out, store.SummaryOf(d))
	}
	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			s.log.Warn("prune flow index", "err", err)
		}
	}
	return out, nil
}

// Delete removes the flow and its index entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return errs.Wrap(errs.ErrCodeNetwork, err, "delete flow from redis")
	}
	return nil
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

var _ store.Store = (*Store)(nil)
