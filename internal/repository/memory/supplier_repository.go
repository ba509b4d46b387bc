package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/repository"
	"github.com/automatenwerk/stockpilot/internal/tablestate"
)

// SupplierRepository provides in-memory supplier storage
type SupplierRepository struct {
	s *Store
}

var _ repository.SupplierRepository = (*SupplierRepository)(nil)

var supplierColumns = tablestate.Columns[domain.Supplier]{
	"id":             func(a, b domain.Supplier) bool { return a.ID < b.ID },
	"name":           func(a, b domain.Supplier) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) },
	"lead_time_days": func(a, b domain.Supplier) bool { return a.LeadTimeDays < b.LeadTimeDays },
}

func (r *SupplierRepository) List(ctx context.Context, filter domain.ListFilter) (*domain.ListResponse[domain.Supplier], error) {
	all, _ := r.All(ctx)

	page := tablestate.Apply(all, tablestate.Query[domain.Supplier]{
		Filter: func(s domain.Supplier) bool {
			return tablestate.ContainsFold(s.Name, filter.Search) || tablestate.ContainsFold(s.Homepage, filter.Search)
		},
		SortKey:  filter.SortField,
		SortDir:  tablestate.ParseSortDir(filter.SortDir),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, supplierColumns, "name")

	return toListResponse(page), nil
}

func (r *SupplierRepository) All(ctx context.Context) ([]domain.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Supplier, 0, len(r.s.suppliers))
	for _, s := range r.s.suppliers {
		out = append(out, s)
	}
	sortByID(out, func(s domain.Supplier) int64 { return s.ID })
	return out, nil
}

func (r *SupplierRepository) Get(ctx context.Context, id int64) (*domain.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	s, ok := r.s.suppliers[id]
	if !ok {
		return nil, domain.NotFoundError("supplier", id)
	}
	return &s, nil
}

func (r *SupplierRepository) Save(ctx context.Context, supplier *domain.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	if supplier.ID == 0 {
		supplier.ID = nextID(r.s.suppliers)
		supplier.CreatedAt = now
	} else {
		existing, ok := r.s.suppliers[supplier.ID]
		if !ok {
			return domain.NotFoundError("supplier", supplier.ID)
		}
		supplier.CreatedAt = existing.CreatedAt
	}
	supplier.UpdatedAt = now
	r.s.suppliers[supplier.ID] = *supplier
	return nil
}

func (r *SupplierRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.suppliers[id]; !ok {
		return domain.NotFoundError("supplier", id)
	}
	delete(r.s.suppliers, id)
	return nil
}

func sortByID[T any](items []T, id func(T) int64) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}

func toListResponse[T any](p tablestate.Page[T]) *domain.ListResponse[T] {
	return &domain.ListResponse[T]{
		Items:      p.Items,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}
