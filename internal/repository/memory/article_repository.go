package memory

import (
	"context"
	"strings"

	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/repository"
	"github.com/automatenwerk/stockpilot/internal/tablestate"
)

// ArticleRepository provides in-memory article storage
type ArticleRepository struct {
	s *Store
}

var _ repository.ArticleRepository = (*ArticleRepository)(nil)

var articleColumns = tablestate.Columns[domain.Article]{
	"id":    func(a, b domain.Article) bool { return a.ID < b.ID },
	"name":  func(a, b domain.Article) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) },
	"stock": func(a, b domain.Article) bool { return a.Stock < b.Stock },
	"ean":   func(a, b domain.Article) bool { return a.EAN < b.EAN },
}

func (r *ArticleRepository) List(ctx context.Context, filter domain.ListFilter) (*domain.ListResponse[domain.Article], error) {
	all, _ := r.All(ctx)

	page := tablestate.Apply(all, tablestate.Query[domain.Article]{
		Filter: func(a domain.Article) bool {
			if filter.SupplierID != 0 && a.SupplierID != filter.SupplierID {
				return false
			}
			return tablestate.ContainsFold(a.Name, filter.Search) || tablestate.ContainsFold(a.EAN, filter.Search)
		},
		SortKey:  filter.SortField,
		SortDir:  tablestate.ParseSortDir(filter.SortDir),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, articleColumns, "name")

	return toListResponse(page), nil
}

func (r *ArticleRepository) All(ctx context.Context) ([]domain.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Article, 0, len(r.s.articles))
	for _, a := range r.s.articles {
		out = append(out, a)
	}
	sortByID(out, func(a domain.Article) int64 { return a.ID })
	return out, nil
}

func (r *ArticleRepository) Get(ctx context.Context, id int64) (*domain.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.articles[id]
	if !ok {
		return nil, domain.NotFoundError("article", id)
	}
	return &a, nil
}

func (r *ArticleRepository) GetByEAN(ctx context.Context, ean string) (*domain.Article, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.articles {
		if a.EAN != "" && a.EAN == ean {
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *ArticleRepository) Save(ctx context.Context, article *domain.Article) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	if article.ID == 0 {
		article.ID = nextID(r.s.articles)
		article.CreatedAt = now
	} else {
		existing, ok := r.s.articles[article.ID]
		if !ok {
			return domain.NotFoundError("article", article.ID)
		}
		article.CreatedAt = existing.CreatedAt
	}
	article.UpdatedAt = now
	r.s.articles[article.ID] = *article
	return nil
}

func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.articles[id]; !ok {
		return domain.NotFoundError("article", id)
	}
	delete(r.s.articles, id)
	delete(r.s.sales, id)
	return nil
}

func (r *ArticleRepository) CountBySupplier(ctx context.Context, supplierID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, a := range r.s.articles {
		if a.SupplierID == supplierID {
			n++
		}
	}
	return n, nil
}
