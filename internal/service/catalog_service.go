package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/automatenwerk/stockpilot/internal/cache"
	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/repository"
)

// CatalogService manages articles and suppliers.
type CatalogService struct {
	articles  repository.ArticleRepository
	suppliers repository.SupplierRepository
	cache     cache.ReorderCache
}

func NewCatalogService(articles repository.ArticleRepository, suppliers repository.SupplierRepository, cacheImpl cache.ReorderCache) *CatalogService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReorderCache()
	}
	return &CatalogService{articles: articles, suppliers: suppliers, cache: cacheImpl}
}

func (s *CatalogService) ListArticles(ctx context.Context, filter domain.ListFilter) (*domain.ListResponse[domain.Article], error) {
	return s.articles.List(ctx, filter)
}

func (s *CatalogService) GetArticle(ctx context.Context, id int64) (*domain.Article, error) {
	return s.articles.Get(ctx, id)
}

func (s *CatalogService) CreateArticle(ctx context.Context, a *domain.Article) error {
	a.ID = 0
	if err := s.checkArticle(ctx, a); err != nil {
		return err
	}
	if err := s.articles.Save(ctx, a); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// UpdateArticle replaces the editable fields of article id.
func (s *CatalogService) UpdateArticle(ctx context.Context, id int64, a *domain.Article) error {
	if _, err := s.articles.Get(ctx, id); err != nil {
		return err
	}
	a.ID = id
	if err := s.checkArticle(ctx, a); err != nil {
		return err
	}
	if err := s.articles.Save(ctx, a); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) DeleteArticle(ctx context.Context, id int64) error {
	if err := s.articles.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// checkArticle validates the fields and the references to other entities.
func (s *CatalogService) checkArticle(ctx context.Context, a *domain.Article) error {
	if err := a.Validate(); err != nil {
		return err
	}

	if a.SupplierID != 0 {
		if _, err := s.suppliers.Get(ctx, a.SupplierID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ValidationError(fmt.Sprintf("supplier %d does not exist", a.SupplierID))
			}
			return err
		}
	}

	if a.EAN != "" {
		existing, err := s.articles.GetByEAN(ctx, a.EAN)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return err
		case existing.ID != a.ID:
			return domain.ValidationError("ean " + a.EAN + " is already used by " + existing.Name)
		}
	}
	return nil
}

func (s *CatalogService) ListSuppliers(ctx context.Context, filter domain.ListFilter) (*domain.ListResponse[domain.Supplier], error) {
	return s.suppliers.List(ctx, filter)
}

func (s *CatalogService) GetSupplier(ctx context.Context, id int64) (*domain.Supplier, error) {
	return s.suppliers.Get(ctx, id)
}

func (s *CatalogService) CreateSupplier(ctx context.Context, sup *domain.Supplier) error {
	sup.ID = 0
	if err := sup.Validate(); err != nil {
		return err
	}
	if err := s.suppliers.Save(ctx, sup); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) UpdateSupplier(ctx context.Context, id int64, sup *domain.Supplier) error {
	sup.ID = id
	if err := sup.Validate(); err != nil {
		return err
	}
	if err := s.suppliers.Save(ctx, sup); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// DeleteSupplier refuses to remove a supplier that still delivers articles.
func (s *CatalogService) DeleteSupplier(ctx context.Context, id int64) error {
	n, err := s.articles.CountBySupplier(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ValidationError(fmt.Sprintf("supplier %d still has %d articles", id, n))
	}
	if err := s.suppliers.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("catalog: cache invalidate failed")
	}
}
