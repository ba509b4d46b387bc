// internal/domain/models.go
package domain

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the German standard VAT rate in percent.
var DefaultTaxRate = decimal.NewFromInt(19)

var eanPattern = regexp.MustCompile(`^(\d{8}|\d{13})$`)

// Article is a product kept in stock
type Article struct {
	ID                int64           `json:"id" db:"id"`
	Name              string          `json:"name" db:"name"`
	EAN               string          `json:"ean" db:"ean"`
	Stock             int             `json:"stock" db:"stock"`
	SupplierID        int64           `json:"supplier_id" db:"supplier_id"`
	NetPurchasePrice  decimal.Decimal `json:"net_purchase_price" db:"net_purchase_price"`
	Deposit           decimal.Decimal `json:"deposit" db:"deposit"`   // Pfand
	TaxRate           decimal.Decimal `json:"tax_rate" db:"tax_rate"` // percent
	SalePrice         decimal.Decimal `json:"sale_price" db:"sale_price"`
	SupplierArticleNo string          `json:"supplier_article_no" db:"supplier_article_no"`
	Link              string          `json:"link" db:"link"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// TaxAmount is the VAT on purchase price plus deposit, rounded to 3 places.
func (a *Article) TaxAmount() decimal.Decimal {
	base := a.NetPurchasePrice.Add(a.Deposit)
	return base.Mul(a.taxRate()).Div(decimal.NewFromInt(100)).Round(3)
}

// GrossPurchasePrice is purchase price plus deposit plus VAT, rounded to cents.
func (a *Article) GrossPurchasePrice() decimal.Decimal {
	base := a.NetPurchasePrice.Add(a.Deposit)
	tax := base.Mul(a.taxRate()).Div(decimal.NewFromInt(100))
	return base.Add(tax).Round(2)
}

// MarshalJSON adds the derived tax and gross price to the stored fields.
func (a Article) MarshalJSON() ([]byte, error) {
	type article Article
	return json.Marshal(struct {
		article
		TaxAmount          decimal.Decimal `json:"tax_amount"`
		GrossPurchasePrice decimal.Decimal `json:"gross_purchase_price"`
	}{
		article:            article(a),
		TaxAmount:          a.TaxAmount(),
		GrossPurchasePrice: a.GrossPurchasePrice(),
	})
}

func (a *Article) taxRate() decimal.Decimal {
	if a.TaxRate.IsZero() {
		return DefaultTaxRate
	}
	return a.TaxRate
}

// Validate checks the article fields a user can edit.
func (a *Article) Validate() error {
	a.Name = strings.TrimSpace(a.Name)
	a.EAN = strings.TrimSpace(a.EAN)
	a.SupplierArticleNo = strings.TrimSpace(a.SupplierArticleNo)
	a.Link = strings.TrimSpace(a.Link)

	if a.Name == "" {
		return ValidationError("name is required")
	}
	if a.EAN != "" && !eanPattern.MatchString(a.EAN) {
		return ValidationError("ean must have 8 or 13 digits")
	}
	if a.Link != "" && !validLink(a.Link) {
		return ValidationError("link must be an http or https URL")
	}
	if a.Stock < 0 {
		return ValidationError("stock cannot be negative")
	}
	if a.NetPurchasePrice.IsNegative() || a.Deposit.IsNegative() || a.SalePrice.IsNegative() {
		return ValidationError("prices cannot be negative")
	}
	if a.TaxRate.IsNegative() {
		return ValidationError("tax rate cannot be negative")
	}
	if a.TaxRate.IsZero() {
		a.TaxRate = DefaultTaxRate
	}
	return nil
}

func validLink(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Supplier delivers articles
type Supplier struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Homepage     string    `json:"homepage" db:"homepage"`
	LeadTimeDays float64   `json:"lead_time_days" db:"lead_time_days"` // Lieferzyklus
	DeliveryDays []string  `json:"delivery_days" db:"-"`
	OrderDays    []string  `json:"order_days" db:"-"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultLeadTimeDays is applied to suppliers created without a lead time.
const DefaultLeadTimeDays = 4

var weekdays = map[string]bool{
	"Montag": true, "Dienstag": true, "Mittwoch": true, "Donnerstag": true,
	"Freitag": true, "Samstag": true, "Sonntag": true,
}

// Validate checks the supplier fields a user can edit.
func (s *Supplier) Validate() error {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return ValidationError("name is required")
	}
	if s.LeadTimeDays == 0 {
		s.LeadTimeDays = DefaultLeadTimeDays
	}
	if s.LeadTimeDays < 0 {
		return ValidationError("lead time cannot be negative")
	}
	for _, d := range append(append([]string(nil), s.DeliveryDays...), s.OrderDays...) {
		if !weekdays[d] {
			return ValidationError("unknown weekday " + d)
		}
	}
	return nil
}

// DailySales is the quantity of one article sold on one day
type DailySales struct {
	ArticleID int64     `json:"article_id" db:"article_id"`
	Date      time.Time `json:"date" db:"sales_date"`
	Quantity  float64   `json:"quantity" db:"quantity"`
}

// ListFilter narrows catalog lists
type ListFilter struct {
	Search     string `json:"search"`
	SupplierID int64  `json:"supplier_id"`
	SortField  string `json:"sort_field"`
	SortDir    string `json:"sort_direction"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

// ListResponse is a page of a catalog list
type ListResponse[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}
