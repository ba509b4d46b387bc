package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/automatenwerk/stockpilot/internal/config"
	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/repository"
	"github.com/automatenwerk/stockpilot/internal/tablestate"
)

const reorderKeyPrefix = "reorder:suggestions"

// ReorderCache stores pages of order suggestions per as-of day and filter.
type ReorderCache interface {
	Get(ctx context.Context, asOf time.Time, filter domain.ReorderFilter) (*domain.ReorderResponse, bool, error)
	Set(ctx context.Context, asOf time.Time, filter domain.ReorderFilter, resp *domain.ReorderResponse) error
	InvalidateAll(ctx context.Context) error
}

type redisReorderCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopReorderCache struct{}

// NewReorderCache connects to redis when caching is enabled and falls back
// to a cache that never hits otherwise.
func NewReorderCache(cfg config.CacheConfig) (ReorderCache, error) {
	if !cfg.Enabled {
		return &noopReorderCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisReorderCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopReorderCache() ReorderCache {
	return &noopReorderCache{}
}

func (c *redisReorderCache) Get(ctx context.Context, asOf time.Time, filter domain.ReorderFilter) (*domain.ReorderResponse, bool, error) {
	payload, err := c.client.Get(ctx, buildReorderKey(asOf, filter)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var resp domain.ReorderResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, false, fmt.Errorf("decode reorder cache: %w", err)
	}

	return &resp, true, nil
}

func (c *redisReorderCache) Set(ctx context.Context, asOf time.Time, filter domain.ReorderFilter, resp *domain.ReorderResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode reorder cache: %w", err)
	}

	if err := c.client.Set(ctx, buildReorderKey(asOf, filter), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisReorderCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, reorderKeyPrefix, scanBatchSize)
}

func (n *noopReorderCache) Get(ctx context.Context, asOf time.Time, filter domain.ReorderFilter) (*domain.ReorderResponse, bool, error) {
	return nil, false, nil
}

func (n *noopReorderCache) Set(ctx context.Context, asOf time.Time, filter domain.ReorderFilter, resp *domain.ReorderResponse) error {
	return nil
}

func (n *noopReorderCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildReorderKey(asOf time.Time, filter domain.ReorderFilter) string {
	return fmt.Sprintf("%s:%s", reorderKeyPrefix, reorderFilterHash(asOf, filter))
}

// reorderFilterHash maps equivalent filters of one sales day onto the same
// key: search is case-folded and paging is normalized the way the list
// applies it.
func reorderFilterHash(asOf time.Time, filter domain.ReorderFilter) string {
	page, pageSize := tablestate.Normalize(filter.Page, filter.PageSize)
	parts := []string{
		"as_of=" + repository.Day(asOf).Format("2006-01-02"),
		fmt.Sprintf("page=%d", page),
		fmt.Sprintf("page_size=%d", pageSize),
		"sort_dir=" + string(tablestate.ParseSortDir(filter.SortDir)),
	}

	if term := strings.ToLower(strings.TrimSpace(filter.Search)); term != "" {
		parts = append(parts, "search="+term)
	}
	if filter.SupplierID != 0 {
		parts = append(parts, fmt.Sprintf("supplier_id=%d", filter.SupplierID))
	}
	if field := strings.ToLower(strings.TrimSpace(filter.SortField)); field != "" {
		parts = append(parts, "sort_field="+field)
	}

	sort.Strings(parts)
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
