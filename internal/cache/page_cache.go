package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix        = "invoice-dashboard:page:"
	generationPrefix = "invoice-dashboard:gen:"
	defaultTTL       = time.Minute
)

// storeIfCurrent writes a view only while the path generation still matches
// the one read before rendering.
var storeIfCurrent = redis.NewScript(`
if tonumber(redis.call('GET', KEYS[1]) or '0') ~= tonumber(ARGV[1]) then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

var globSpecial = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// Entry is one rendered view as it was sent to the client.
type Entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Store caches rendered views by path and query. Invalidate drops every variant
// of a path and bumps its generation, so a render that started earlier is not stored.
type Store interface {
	Get(ctx context.Context, path, rawQuery string) (*Entry, error)
	Generation(ctx context.Context, path string) (int64, error)
	Set(ctx context.Context, path, rawQuery string, gen int64, entry *Entry) error
	Invalidate(ctx context.Context, path string) error
}

// Key returns the redis key of a cached view.
func Key(path, rawQuery string) string {
	if rawQuery == "" {
		return keyPrefix + path
	}
	return keyPrefix + path + "?" + rawQuery
}

func generationKey(path string) string {
	return generationPrefix + path
}

// variantsPattern matches the query variants of path and nothing below it.
func variantsPattern(path string) string {
	return globSpecial.Replace(Key(path, "")) + `\?*`
}

type PageCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewPageCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *PageCache {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &PageCache{client: client, ttl: ttl, log: log.Named("cache.page")}
}

// Get returns nil, nil on a miss.
func (p *PageCache) Get(ctx context.Context, path, rawQuery string) (*Entry, error) {
	data, err := p.client.Get(ctx, Key(path, rawQuery)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decode cached view: %w", err)
	}
	return &entry, nil
}

// Generation returns how many times path has been invalidated.
func (p *PageCache) Generation(ctx context.Context, path string) (int64, error) {
	gen, err := p.client.Get(ctx, generationKey(path)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set stores entry unless path was invalidated after gen was read.
func (p *PageCache) Set(ctx context.Context, path, rawQuery string, gen int64, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	stored, err := storeIfCurrent.Run(ctx, p.client,
		[]string{generationKey(path), Key(path, rawQuery)},
		gen, string(data), p.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return err
	}
	if stored == 0 {
		p.log.Debug("stale view not cached", zap.String("path", path), zap.Int64("generation", gen))
	}
	return nil
}

// Invalidate removes the cached view of path and every query variant of it.
func (p *PageCache) Invalidate(ctx context.Context, path string) error {
	if err := p.client.Incr(ctx, generationKey(path)).Err(); err != nil {
		return fmt.Errorf("bump generation of %s: %w", path, err)
	}

	base := Key(path, "")
	variants, err := p.client.Keys(ctx, variantsPattern(path)).Result()
	if err != nil {
		return fmt.Errorf("list cached variants of %s: %w", path, err)
	}

	keys := append([]string{base}, variants...)
	removed, err := p.client.Del(ctx, keys...).Result()
	if err != nil {
		return fmt.Errorf("invalidate %s: %w", path, err)
	}
	p.log.Debug("page cache invalidated", zap.String("path", path), zap.Int64("removed", removed))
	return nil
}

// Noop is used when caching is disabled. Every lookup misses.
type Noop struct{}

func (Noop) Get(context.Context, string, string) (*Entry, error) { return nil, nil }
func (Noop) Generation(context.Context, string) (int64, error) { return 0, nil }
func (Noop) Set(context.Context, string, string, int64, *Entry) error { return nil }
func (Noop) Invalidate(context.Context, string) error { return nil }
