package storage

import (
	"encoding/json"
	"strings"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"askstream/internal/models"
	"askstream/pkg/logger"
)

var bucketName = []byte("search_cache")

// DefaultTTL bounds how long a cached search response stays servable.
const DefaultTTL = 15 * time.Minute

// cacheEntry wraps a response with its storage time for expiry checks.
type cacheEntry struct {
	CachedAt time.Time              `json:"cached_at"`
	Response *models.SearchResponse `json:"response"`
}

// SearchCache persists successful search responses in BBolt so repeated
// queries inside the TTL window skip the network. Entries are derived,
// re-fetchable data; expiry is lazy, an expired entry is simply a miss
// that the next successful fetch overwrites.
type SearchCache struct {
	db  *bbolt.DB
	ttl time.Duration
	now func() time.Time
}

// NewSearchCache opens (or creates) the cache database at path.
func NewSearchCache(path string, ttl time.Duration) (*SearchCache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("search cache initialized",
		zap.String("path", path),
		zap.Duration("ttl", ttl),
	)
	return &SearchCache{db: db, ttl: ttl, now: time.Now}, nil
}

// cacheKey folds case and runs of whitespace so trivially different
// spellings of the same query share an entry.
func cacheKey(query string) []byte {
	return []byte(strings.ToLower(strings.Join(strings.Fields(query), " ")))
}

// Get returns the cached response for query when present and fresh.
func (c *SearchCache) Get(query string) (*models.SearchResponse, bool) {
	var entry cacheEntry

	err := c.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		data := b.Get(cacheKey(query))
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &entry)
	})

	if err != nil || entry.Response == nil {
		return nil, false
	}
	if c.now().Sub(entry.CachedAt) > c.ttl {
		return nil, false
	}
	return entry.Response, true
}

// Put stores resp under the normalized query key.
func (c *SearchCache) Put(query string, resp *models.SearchResponse) error {
	data, err := json.Marshal(cacheEntry{CachedAt: c.now(), Response: resp})
	if err != nil {
		return err
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		return b.Put(cacheKey(query), data)
	})
}

// Delete removes the entry for query.
func (c *SearchCache) Delete(query string) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName)
		return b.Delete(cacheKey(query))
	})
}

// Close closes the database file.
func (c *SearchCache) Close() error {
	return c.db.Close()
}
