package service

import (
	"context"
	"testing"
	"time"

	"github.com/automatenwerk/stockpilot/internal/config"
	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/repository"
	"github.com/automatenwerk/stockpilot/internal/repository/memory"
	"github.com/automatenwerk/stockpilot/internal/storage"
)

var asOf = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

// countingCache records invalidations and the days it stored and never hits.
type countingCache struct {
	invalidations int
	sets          int
	days          []time.Time
}

func (c *countingCache) Get(ctx context.Context, asOf time.Time, filter domain.ReorderFilter) (*domain.ReorderResponse, bool, error) {
	return nil, false, nil
}

func (c *countingCache) Set(ctx context.Context, asOf time.Time, filter domain.ReorderFilter, resp *domain.ReorderResponse) error {
	c.sets++
	c.days = append(c.days, asOf)
	return nil
}

func (c *countingCache) InvalidateAll(ctx context.Context) error {
	c.invalidations++
	return nil
}

// fakeArchive keeps uploads in memory.
type fakeArchive struct {
	uploads map[string][]byte
}

func (f *fakeArchive) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for key, data := range f.uploads {
		out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data))})
	}
	return out, nil
}

func (f *fakeArchive) DownloadObject(ctx context.Context, key, destPath string) error {
	return nil
}

func (f *fakeArchive) UploadObject(ctx context.Context, key string, data []byte) error {
	if f.uploads == nil {
		f.uploads = make(map[string][]byte)
	}
	f.uploads[key] = data
	return nil
}

type fixture struct {
	repos    repository.Repositories
	cache    *countingCache
	catalog  *CatalogService
	bookings *BookingService
	reorder  *ReorderService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewSampleStore(asOf)
	store.SetClock(func() time.Time { return asOf })
	repos := store.Repositories()
	c := &countingCache{}

	f := &fixture{
		repos:    repos,
		cache:    c,
		catalog:  NewCatalogService(repos.Articles, repos.Suppliers, c),
		bookings: NewBookingService(repos.Bookings, c),
		reorder:  NewReorderService(repos, c, nil, config.ReorderConfig{}),
	}
	f.bookings.now = func() time.Time { return asOf }
	f.reorder.now = func() time.Time { return asOf }
	return f
}
