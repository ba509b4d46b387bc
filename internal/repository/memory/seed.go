package memory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/repository"
)

// SampleSuppliers are the suppliers a fresh installation starts with.
func SampleSuppliers() []domain.Supplier {
	return []domain.Supplier{
		{ID: 1, Name: "CocaCola GmbH", LeadTimeDays: 4, DeliveryDays: []string{"Dienstag"}, OrderDays: []string{"Freitag"}},
		{ID: 2, Name: "XY Getränkehandel", LeadTimeDays: 3, DeliveryDays: []string{"Montag", "Donnerstag"}, OrderDays: []string{"Mittwoch"}},
		{ID: 3, Name: "ABC Lieferanten", LeadTimeDays: 5, DeliveryDays: []string{"Mittwoch"}, OrderDays: []string{"Montag"}},
	}
}

// SampleArticles are the beverages a fresh installation starts with.
func SampleArticles() []domain.Article {
	return []domain.Article{
		{ID: 1, Name: "Coca Cola 0.5L", EAN: "1234567890123", Stock: 50, SupplierID: 1,
			NetPurchasePrice: decimal.RequireFromString("0.50"), Deposit: decimal.RequireFromString("0.25"),
			TaxRate: decimal.NewFromInt(19), SalePrice: decimal.RequireFromString("2.00"),
			SupplierArticleNo: "CC-0500", Link: "https://www.coca-cola.de"},
		{ID: 2, Name: "Fanta Orange 1L", EAN: "5554443332221", Stock: 30, SupplierID: 2,
			NetPurchasePrice: decimal.RequireFromString("0.80"), Deposit: decimal.RequireFromString("0.25"),
			TaxRate: decimal.NewFromInt(19), SalePrice: decimal.RequireFromString("2.50")},
		{ID: 3, Name: "Red Bull 0.25L", EAN: "9002490100070", Stock: 20, SupplierID: 3,
			NetPurchasePrice: decimal.RequireFromString("0.95"), Deposit: decimal.RequireFromString("0.25"),
			TaxRate: decimal.NewFromInt(19), SalePrice: decimal.RequireFromString("2.80")},
	}
}

// SampleSales are the last 28 days of sales per sample article, most recent first.
func SampleSales() map[int64][]float64 {
	return map[int64][]float64{
		1: {20, 18, 22, 19, 21, 20, 19, 18, 20, 22, 21, 19, 20, 20, 18, 21, 19, 20, 20, 22, 18, 19, 20, 21, 20, 19, 20, 20},
		2: {8, 7, 9, 8, 8, 7, 8, 9, 7, 8, 8, 7, 8, 9, 8, 7, 8, 8, 9, 7, 8, 8, 7, 8, 9, 8, 7, 8},
		3: {5, 4, 6, 5, 5, 4, 5, 6, 5, 5, 4, 5, 5, 6, 5, 5, 4, 5, 5, 6, 5, 5, 4, 5, 5, 6, 5, 5},
	}
}

// NewSampleStore returns a store holding the sample catalog with sales ending at asOf.
func NewSampleStore(asOf time.Time) *Store {
	s := NewStore()
	for _, sup := range SampleSuppliers() {
		sup.CreatedAt, sup.UpdatedAt = asOf, asOf
		s.suppliers[sup.ID] = sup
	}
	for _, a := range SampleArticles() {
		a.CreatedAt, a.UpdatedAt = asOf, asOf
		s.articles[a.ID] = a
	}
	end := repository.Day(asOf)
	for id, daily := range SampleSales() {
		for i, qty := range daily {
			s.addSaleLocked(id, end.AddDate(0, 0, -i), qty)
		}
	}
	return s
}
