// Package export renders order suggestions as downloadable spreadsheets.
package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/reorder"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat defaults to CSV for an empty value.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", domain.ValidationError("unsupported export format " + s)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func (f Format) Extension() string { return "." + string(f) }

var header = []string{
	"Artikel-ID",
	"Artikel",
	"EAN",
	"Lieferant",
	"Bestand",
	"Ø Tagesbedarf",
	"Trendfaktor",
	"Sicherheitsbestand",
	"Lieferzyklus (Tage)",
	"Bestellvorschlag",
	"Bestellwert (EUR)",
}

// record formats one row with German number formatting.
func record(r domain.ReorderRow) []string {
	return []string{
		strconv.FormatInt(r.ArticleID, 10),
		r.ArticleName,
		r.EAN,
		r.SupplierName,
		strconv.Itoa(r.Stock),
		reorder.FormatDE(r.AverageDailyDemand, 1),
		reorder.FormatDE(r.TrendFactor, 2),
		strconv.Itoa(r.SafetyStock),
		reorder.FormatDE(r.LeadTimeDays, 0),
		strconv.Itoa(r.SuggestedOrderQuantity),
		reorder.FormatDE(r.OrderValue.InexactFloat64(), 2),
	}
}

// Render writes rows in the requested format.
func Render(format Format, rows []domain.ReorderRow) ([]byte, error) {
	switch format {
	case FormatCSV:
		return CSV(rows)
	case FormatXLSX:
		return XLSX(rows)
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}
