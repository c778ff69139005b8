// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"finqa_backend/internal/feature/financials/domain/entity"
	"finqa_backend/internal/feature/financials/usecase"
)

// CachingFinancialRepository decorates a FinancialRepository with Redis caching.
// It implements the decorator pattern, transparently adding caching without
// modifying the underlying repository. A nil Redis client bypasses the cache
// entirely, so the server can degrade gracefully when Redis is absent.
type CachingFinancialRepository struct {
	inner     usecase.FinancialRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingFinancialRepository decorates a FinancialRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "financials".
func NewCachingFinancialRepository(rdb *redis.Client, ttl time.Duration, inner usecase.FinancialRepository, namespace string) *CachingFinancialRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "financials"
	}
	return &CachingFinancialRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

var _ usecase.FinancialRepository = (*CachingFinancialRepository)(nil)

// UpsertBatch writes records through to the store and invalidates the whole
// cache namespace. The dataset is small enough that per-key invalidation
// would not pay for its complexity.
func (c *CachingFinancialRepository) UpsertBatch(ctx context.Context, records []entity.FinancialRecord) error {
	if err := c.inner.UpsertBatch(ctx, records); err != nil {
		return err
	}
	if c.rdb == nil || len(records) == 0 {
		return nil
	}
	_ = c.deleteByPattern(ctx, c.namespace+":*") // Best effort: don't fail if cache deletion fails
	return nil
}

// Get retrieves one record, checking cache first then falling back to the store.
func (c *CachingFinancialRepository) Get(ctx context.Context, company string, year int) (entity.FinancialRecord, error) {
	if c.rdb == nil {
		return c.inner.Get(ctx, company, year)
	}
	key := fmt.Sprintf("%s:get:%s:%d", c.namespace, safe(company), year)

	var rec entity.FinancialRecord
	if ok := c.fetch(ctx, key, &rec); ok {
		return rec, nil
	}
	rec, err := c.inner.Get(ctx, company, year)
	if err != nil {
		return entity.FinancialRecord{}, err
	}
	c.store(ctx, key, rec)
	return rec, nil
}

// FindByCompany retrieves a company's records, cache first.
func (c *CachingFinancialRepository) FindByCompany(ctx context.Context, company string) ([]entity.FinancialRecord, error) {
	if c.rdb == nil {
		return c.inner.FindByCompany(ctx, company)
	}
	key := fmt.Sprintf("%s:history:%s", c.namespace, safe(company))

	var recs []entity.FinancialRecord
	if ok := c.fetch(ctx, key, &recs); ok {
		return recs, nil
	}
	recs, err := c.inner.FindByCompany(ctx, company)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, recs)
	return recs, nil
}

// ListCompanies retrieves the distinct company names, cache first.
func (c *CachingFinancialRepository) ListCompanies(ctx context.Context) ([]string, error) {
	if c.rdb == nil {
		return c.inner.ListCompanies(ctx)
	}
	key := c.namespace + ":companies"

	var companies []string
	if ok := c.fetch(ctx, key, &companies); ok {
		return companies, nil
	}
	companies, err := c.inner.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, companies)
	return companies, nil
}

// ListYears retrieves the distinct fiscal years, cache first.
func (c *CachingFinancialRepository) ListYears(ctx context.Context) ([]int, error) {
	if c.rdb == nil {
		return c.inner.ListYears(ctx)
	}
	key := c.namespace + ":years"

	var years []int
	if ok := c.fetch(ctx, key, &years); ok {
		return years, nil
	}
	years, err := c.inner.ListYears(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, years)
	return years, nil
}

// Rank retrieves a metric ranking, cache first.
func (c *CachingFinancialRepository) Rank(ctx context.Context, metric entity.Metric, year int) ([]entity.CompanyValue, error) {
	if c.rdb == nil {
		return c.inner.Rank(ctx, metric, year)
	}
	key := fmt.Sprintf("%s:rank:%s:%d", c.namespace, metric, year)

	var entries []entity.CompanyValue
	if ok := c.fetch(ctx, key, &entries); ok {
		return entries, nil
	}
	entries, err := c.inner.Rank(ctx, metric, year)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, entries)
	return entries, nil
}

// RawSelect bypasses the cache: arbitrary SQL does not make a stable cache key.
func (c *CachingFinancialRepository) RawSelect(ctx context.Context, query string) ([]map[string]any, error) {
	return c.inner.RawSelect(ctx, query)
}

// Count bypasses the cache.
func (c *CachingFinancialRepository) Count(ctx context.Context) (int64, error) {
	return c.inner.Count(ctx)
}

// fetch loads and unmarshals a cached value. Corrupted entries are deleted.
func (c *CachingFinancialRepository) fetch(ctx context.Context, key string, out any) bool {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil || len(b) == 0 {
		return false
	}
	if err := json.Unmarshal(b, out); err != nil {
		_ = c.rdb.Del(ctx, key).Err()
		return false
	}
	return true
}

// store marshals and caches a value (best effort).
func (c *CachingFinancialRepository) store(ctx context.Context, key string, v any) {
	if b, err := json.Marshal(v); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingFinancialRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
