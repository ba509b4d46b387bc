package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/repository"
)

const supplierColumns = `id, name, homepage, lead_time_days, delivery_days, order_days, created_at, updated_at`

var supplierSortFields = map[string]string{
	"id":             "id",
	"name":           "LOWER(name)",
	"lead_time_days": "lead_time_days",
}

// supplierRow carries the weekday arrays, which sqlx cannot scan into []string.
type supplierRow struct {
	ID           int64          `db:"id"`
	Name         string         `db:"name"`
	Homepage     string         `db:"homepage"`
	LeadTimeDays float64        `db:"lead_time_days"`
	DeliveryDays pq.StringArray `db:"delivery_days"`
	OrderDays    pq.StringArray `db:"order_days"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r supplierRow) toDomain() domain.Supplier {
	return domain.Supplier{
		ID:           r.ID,
		Name:         r.Name,
		Homepage:     r.Homepage,
		LeadTimeDays: r.LeadTimeDays,
		DeliveryDays: []string(r.DeliveryDays),
		OrderDays:    []string(r.OrderDays),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toSuppliers(rows []supplierRow) []domain.Supplier {
	out := make([]domain.Supplier, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out
}

type supplierRepository struct {
	db *DB
}

var _ repository.SupplierRepository = (*supplierRepository)(nil)

func NewSupplierRepository(db *DB) *supplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) List(ctx context.Context, filter domain.ListFilter) (*domain.ListResponse[domain.Supplier], error) {
	b := buildSupplierFilter(filter)

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM suppliers`+b.where(), b.args...); err != nil {
		return nil, fmt.Errorf("failed to count suppliers: %w", err)
	}

	query := `SELECT ` + supplierColumns + ` FROM suppliers` + b.where() +
		orderBy(supplierSortFields, filter.SortField, "name", filter.SortDir)
	limit, page, pageSize := b.page(filter.Page, filter.PageSize)

	var rows []supplierRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query+limit, b.args...); err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}

	return &domain.ListResponse[domain.Supplier]{
		Items:      toSuppliers(rows),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func (r *supplierRepository) All(ctx context.Context) ([]domain.Supplier, error) {
	var rows []supplierRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, `SELECT `+supplierColumns+` FROM suppliers ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to get suppliers: %w", err)
	}
	return toSuppliers(rows), nil
}

func (r *supplierRepository) Get(ctx context.Context, id int64) (*domain.Supplier, error) {
	var row supplierRow
	err := sqlx.GetContext(ctx, r.db, &row, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundError("supplier", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get supplier %d: %w", id, err)
	}
	s := row.toDomain()
	return &s, nil
}

func (r *supplierRepository) Save(ctx context.Context, s *domain.Supplier) error {
	delivery, order := pq.Array(nonNil(s.DeliveryDays)), pq.Array(nonNil(s.OrderDays))

	if s.ID == 0 {
		query := `
			INSERT INTO suppliers (name, homepage, lead_time_days, delivery_days, order_days)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`
		err := r.db.QueryRowxContext(ctx, query, s.Name, s.Homepage, s.LeadTimeDays, delivery, order).
			Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert supplier: %w", err)
		}
		return nil
	}

	query := `
		UPDATE suppliers SET
			name = $2, homepage = $3, lead_time_days = $4,
			delivery_days = $5, order_days = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, s.ID, s.Name, s.Homepage, s.LeadTimeDays, delivery, order).
		Scan(&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError("supplier", s.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update supplier %d: %w", s.ID, err)
	}
	return nil
}

func (r *supplierRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete supplier %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError("supplier", id)
	}
	return nil
}

func nonNil(days []string) []string {
	if days == nil {
		return []string{}
	}
	return days
}
