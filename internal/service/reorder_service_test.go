package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automatenwerk/stockpilot/internal/config"
	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/export"
)

func TestSuggestionsFromSampleData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.reorder.Suggestions(ctx, domain.ReorderFilter{})
	require.NoError(t, err)
	require.Equal(t, 3, resp.Total)

	// default sort is by name
	coca := resp.Items[0]
	assert.Equal(t, "Coca Cola 0.5L", coca.ArticleName)
	assert.Equal(t, "CocaCola GmbH", coca.SupplierName)
	assert.Equal(t, 19.9, coca.AverageDailyDemand)
	assert.Equal(t, 0.99, coca.TrendFactor)
	assert.Equal(t, 4, coca.SafetyStock)
	assert.Equal(t, 33, coca.SuggestedOrderQuantity)
	assert.True(t, coca.OrderValue.Equal(decimal.RequireFromString("16.5")))

	fanta := resp.Items[1]
	assert.Equal(t, 0, fanta.SuggestedOrderQuantity)
	assert.Equal(t, 0.0, fanta.SortKey)

	assert.Equal(t, 6, resp.Items[2].SuggestedOrderQuantity)
	assert.Equal(t, 1, f.cache.sets)
	assert.Equal(t, []time.Time{asOf}, f.cache.days, "cached under the sales day")
}

func TestSuggestionsSortFilterPage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.reorder.Suggestions(ctx, domain.ReorderFilter{SortField: "order_qty", SortDir: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 2}, ids(resp.Items))

	resp, err = f.reorder.Suggestions(ctx, domain.ReorderFilter{SortField: "stock"})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, ids(resp.Items))

	resp, err = f.reorder.Suggestions(ctx, domain.ReorderFilter{Search: "RED"})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, ids(resp.Items))

	resp, err = f.reorder.Suggestions(ctx, domain.ReorderFilter{SupplierID: 2})
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, ids(resp.Items))

	resp, err = f.reorder.Suggestions(ctx, domain.ReorderFilter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Len(t, resp.Items, 1)
}

func TestSuggestionReactsToBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.bookings.Book(ctx, domain.BookingRequest{ArticleID: 1, Type: domain.BookingOut, Quantity: 5})
	require.NoError(t, err)

	row, err := f.reorder.Suggestion(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 45, row.Stock)
	assert.Equal(t, 44, row.SuggestedOrderQuantity)

	_, err = f.reorder.Suggestion(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSuggestionWithoutSupplierUsesDefaultLeadTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.repos.Articles.Get(ctx, 2)
	require.NoError(t, err)
	a.SupplierID = 0
	require.NoError(t, f.repos.Articles.Save(ctx, a))

	row, err := f.reorder.Suggestion(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 4.0, row.LeadTimeDays)
	assert.Equal(t, "", row.SupplierName)
	assert.Equal(t, 4, row.SuggestedOrderQuantity)
}

func TestParamsFromConfig(t *testing.T) {
	p := paramsFromConfig(config.ReorderConfig{})
	assert.Equal(t, 1.65, p.Z)
	assert.Equal(t, 1.0, p.ReviewDays)
	assert.Equal(t, 4.0, p.DefaultLeadTime)

	p = paramsFromConfig(config.ReorderConfig{ServiceLevelZ: 2.33, DefaultLeadTime: 7})
	assert.Equal(t, 2.33, p.Z)
	assert.Equal(t, 7.0, p.DefaultLeadTime)
}

func TestExportArchivesFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	archive := &fakeArchive{}
	f.reorder.archive = archive

	file, err := f.reorder.Export(ctx, domain.ReorderFilter{SortField: "order_qty", SortDir: "desc"}, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "bestellvorschlaege-20240315-103000.csv", file.Name)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "Coca Cola 0.5L")

	require.Contains(t, archive.uploads, "exports/2024/03/15/"+file.Name)
	assert.Equal(t, file.Data, archive.uploads["exports/2024/03/15/"+file.Name])
}

func ids(rows []domain.ReorderRow) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.ArticleID
	}
	return out
}
