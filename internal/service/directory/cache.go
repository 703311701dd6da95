package directory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/directory"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "lesson-invites:directory"

// CachedLookup reads display data through Redis, falling back to the repository on misses.
// Redis errors degrade to repository reads.
type CachedLookup struct {
	client *redis.Client
	repo   directory.DirectoryRepository
	ttl    time.Duration
}

// NewCachedLookup wraps repo with a Redis cache. A nil client disables caching.
func NewCachedLookup(client *redis.Client, repo directory.DirectoryRepository, ttl time.Duration) *CachedLookup {
	return &CachedLookup{client: client, repo: repo, ttl: ttl}
}

type cachedPerson struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func cacheKey(role directory.Role, id int64) string {
	return fmt.Sprintf("%s:%s:%d", cacheKeyPrefix, role, id)
}

// Lookup implements directory.Lookup.
func (c *CachedLookup) Lookup(ctx context.Context, role directory.Role, ids []int64) (map[int64]directory.Person, error) {
	ids = uniqueIDs(ids)
	found := make(map[int64]directory.Person, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	if c.client == nil {
		return c.repo.GetByIDs(ctx, role, ids)
	}

	missing := c.readCache(ctx, role, ids, found)
	if len(missing) == 0 {
		return found, nil
	}

	loaded, err := c.repo.GetByIDs(ctx, role, missing)
	if err != nil {
		return found, err
	}
	for id, p := range loaded {
		found[id] = p
	}

	c.writeCache(ctx, role, loaded)
	return found, nil
}

// readCache fills found from Redis and returns the ids it could not serve.
func (c *CachedLookup) readCache(ctx context.Context, role directory.Role, ids []int64, found map[int64]directory.Person) []int64 {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = cacheKey(role, id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		slog.WarnContext(ctx, "directory cache read failed", "role", string(role), "error", err)
		return ids
	}

	var missing []int64
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			missing = append(missing, ids[i])
			continue
		}
		var p cachedPerson
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			missing = append(missing, ids[i])
			continue
		}
		found[ids[i]] = directory.Person{ID: p.ID, Name: p.Name, Email: p.Email}
	}
	return missing
}

func (c *CachedLookup) writeCache(ctx context.Context, role directory.Role, people map[int64]directory.Person) {
	if len(people) == 0 {
		return
	}

	pipe := c.client.Pipeline()
	for id, p := range people {
		data, err := json.Marshal(cachedPerson{ID: p.ID, Name: p.Name, Email: p.Email})
		if err != nil {
			continue
		}
		pipe.Set(ctx, cacheKey(role, id), data, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		slog.WarnContext(ctx, "directory cache write failed", "role", string(role), "error", err)
	}
}
