package domain

import "github.com/shopspring/decimal"

// ReorderRow is one line of the order suggestion table
type ReorderRow struct {
	ArticleID              int64           `json:"article_id"`
	ArticleName            string          `json:"article_name"`
	EAN                    string          `json:"ean"`
	Stock                  int             `json:"stock"`
	SupplierID             int64           `json:"supplier_id"`
	SupplierName           string          `json:"supplier_name"`
	LeadTimeDays           float64         `json:"lead_time_days"`
	AverageDailyDemand     float64         `json:"average_daily_demand"`
	TrendFactor            float64         `json:"trend_factor"`
	SafetyStock            int             `json:"safety_stock"`
	SuggestedOrderQuantity int             `json:"suggested_order_quantity"`
	OrderValue             decimal.Decimal `json:"order_value"`
	SortKey                float64         `json:"-"`
}

// ReorderFilter narrows the order suggestion table
type ReorderFilter struct {
	Search     string `json:"search"`
	SupplierID int64  `json:"supplier_id"`
	SortField  string `json:"sort_field"`
	SortDir    string `json:"sort_direction"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

// ReorderResponse is a page of order suggestions
type ReorderResponse = ListResponse[ReorderRow]
