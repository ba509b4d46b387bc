package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/automatenwerk/stockpilot/internal/domain"
)

func TestCatalogCreateArticle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := &domain.Article{Name: " Mezzo Mix ", EAN: "4000000000001", SupplierID: 1, NetPurchasePrice: decimal.RequireFromString("0.60")}
	require.NoError(t, f.catalog.CreateArticle(ctx, a))
	assert.Equal(t, "Mezzo Mix", a.Name)
	assert.True(t, a.TaxRate.Equal(domain.DefaultTaxRate))
	assert.Equal(t, 1, f.cache.invalidations)

	err := f.catalog.CreateArticle(ctx, &domain.Article{Name: "Duplicate", EAN: "4000000000001"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = f.catalog.CreateArticle(ctx, &domain.Article{Name: "Orphan", SupplierID: 42})
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = f.catalog.CreateArticle(ctx, &domain.Article{Name: ""})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCatalogUpdateArticleKeepsOwnEAN(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.catalog.GetArticle(ctx, 1)
	require.NoError(t, err)
	a.Stock = 7
	require.NoError(t, f.catalog.UpdateArticle(ctx, 1, a))

	got, err := f.catalog.GetArticle(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)

	err = f.catalog.UpdateArticle(ctx, 99, &domain.Article{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogDeleteSupplierInUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.catalog.DeleteSupplier(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, f.catalog.DeleteArticle(ctx, 1))
	require.NoError(t, f.catalog.DeleteSupplier(ctx, 1))
	_, err = f.catalog.GetSupplier(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogSuppliers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sup := &domain.Supplier{Name: "Getränke Nord", OrderDays: []string{"Montag"}}
	require.NoError(t, f.catalog.CreateSupplier(ctx, sup))
	assert.Equal(t, float64(domain.DefaultLeadTimeDays), sup.LeadTimeDays)

	err := f.catalog.CreateSupplier(ctx, &domain.Supplier{Name: "Bad", OrderDays: []string{"Monday"}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	sup.LeadTimeDays = 2
	require.NoError(t, f.catalog.UpdateSupplier(ctx, sup.ID, sup))

	res, err := f.catalog.ListSuppliers(ctx, domain.ListFilter{Search: "nord"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 2.0, res.Items[0].LeadTimeDays)
}
