package postgres

import (
	"fmt"
	"strings"

	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/tablestate"
)

// clauseBuilder collects WHERE clauses with numbered placeholders.
type clauseBuilder struct {
	clauses []string
	args    []interface{}
}

func (b *clauseBuilder) add(format string, arg interface{}) {
	b.args = append(b.args, arg)
	b.clauses = append(b.clauses, fmt.Sprintf(format, len(b.args)))
}

func (b *clauseBuilder) where() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the normalized paging.
func (b *clauseBuilder) page(page, pageSize int) (string, int, int) {
	page, pageSize = tablestate.Normalize(page, pageSize)
	b.args = append(b.args, pageSize, (page-1)*pageSize)
	n := len(b.args)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", n-1, n), page, pageSize
}

func buildArticleFilter(filter domain.ListFilter) *clauseBuilder {
	b := &clauseBuilder{}
	if term := strings.TrimSpace(filter.Search); term != "" {
		b.add("(name ILIKE $%[1]d OR ean ILIKE $%[1]d)", "%"+term+"%")
	}
	if filter.SupplierID != 0 {
		b.add("supplier_id = $%d", filter.SupplierID)
	}
	return b
}

func buildSupplierFilter(filter domain.ListFilter) *clauseBuilder {
	b := &clauseBuilder{}
	if term := strings.TrimSpace(filter.Search); term != "" {
		b.add("(name ILIKE $%[1]d OR homepage ILIKE $%[1]d)", "%"+term+"%")
	}
	return b
}

func buildBookingFilter(filter domain.BookingFilter) *clauseBuilder {
	b := &clauseBuilder{}
	if filter.ArticleID != 0 {
		b.add("article_id = $%d", filter.ArticleID)
	}
	if t, ok := domain.ParseBookingType(filter.Type); ok {
		b.add("booking_type = $%d", string(t))
	}
	lower, upper := ">=", "<="
	if filter.Exclusive {
		lower, upper = ">", "<"
	}
	if filter.From != nil {
		b.add("booked_at "+lower+" $%d", *filter.From)
	}
	if filter.To != nil {
		b.add("booked_at "+upper+" $%d", *filter.To)
	}
	return b
}

// orderBy maps a user-supplied sort field onto a whitelisted column.
func orderBy(valid map[string]string, field, fallback, dir string) string {
	col, ok := valid[field]
	if !ok {
		col = valid[fallback]
	}
	direction := "ASC"
	if tablestate.ParseSortDir(dir) == tablestate.Desc {
		direction = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s", col, direction, direction)
}

func totalPages(total, pageSize int) int {
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}
