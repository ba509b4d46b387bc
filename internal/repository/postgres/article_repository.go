package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/repository"
)

const articleColumns = `id, name, ean, stock, supplier_id, net_purchase_price, deposit, tax_rate, sale_price, supplier_article_no, link, created_at, updated_at`

var articleSortFields = map[string]string{
	"id":    "id",
	"name":  "LOWER(name)",
	"stock": "stock",
	"ean":   "ean",
}

type articleRepository struct {
	db *DB
}

var _ repository.ArticleRepository = (*articleRepository)(nil)

func NewArticleRepository(db *DB) *articleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) List(ctx context.Context, filter domain.ListFilter) (*domain.ListResponse[domain.Article], error) {
	b := buildArticleFilter(filter)

	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM articles`+b.where(), b.args...); err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}

	query := `SELECT ` + articleColumns + ` FROM articles` + b.where() +
		orderBy(articleSortFields, filter.SortField, "name", filter.SortDir)
	limit, page, pageSize := b.page(filter.Page, filter.PageSize)

	items := []domain.Article{}
	if err := sqlx.SelectContext(ctx, r.db, &items, query+limit, b.args...); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	return &domain.ListResponse[domain.Article]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func (r *articleRepository) All(ctx context.Context) ([]domain.Article, error) {
	var items []domain.Article
	if err := sqlx.SelectContext(ctx, r.db, &items, `SELECT `+articleColumns+` FROM articles ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to get articles: %w", err)
	}
	return items, nil
}

func (r *articleRepository) Get(ctx context.Context, id int64) (*domain.Article, error) {
	var a domain.Article
	err := sqlx.GetContext(ctx, r.db, &a, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundError("article", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article %d: %w", id, err)
	}
	return &a, nil
}

func (r *articleRepository) GetByEAN(ctx context.Context, ean string) (*domain.Article, error) {
	var a domain.Article
	err := sqlx.GetContext(ctx, r.db, &a, `SELECT `+articleColumns+` FROM articles WHERE ean = $1 AND ean <> '' ORDER BY id LIMIT 1`, ean)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article by ean: %w", err)
	}
	return &a, nil
}

func (r *articleRepository) Save(ctx context.Context, a *domain.Article) error {
	if a.ID == 0 {
		query := `
			INSERT INTO articles (name, ean, stock, supplier_id, net_purchase_price, deposit, tax_rate, sale_price, supplier_article_no, link)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, created_at, updated_at
		`
		err := r.db.QueryRowxContext(ctx, query,
			a.Name, a.EAN, a.Stock, a.SupplierID, a.NetPurchasePrice, a.Deposit, a.TaxRate, a.SalePrice,
			a.SupplierArticleNo, a.Link,
		).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert article: %w", err)
		}
		return nil
	}

	query := `
		UPDATE articles SET
			name = $2, ean = $3, stock = $4, supplier_id = $5,
			net_purchase_price = $6, deposit = $7, tax_rate = $8, sale_price = $9,
			supplier_article_no = $10, link = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		a.ID, a.Name, a.EAN, a.Stock, a.SupplierID, a.NetPurchasePrice, a.Deposit, a.TaxRate, a.SalePrice,
		a.SupplierArticleNo, a.Link,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError("article", a.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update article %d: %w", a.ID, err)
	}
	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete article %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundError("article", id)
	}
	return nil
}

func (r *articleRepository) CountBySupplier(ctx context.Context, supplierID int64) (int, error) {
	var n int
	if err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM articles WHERE supplier_id = $1`, supplierID); err != nil {
		return 0, fmt.Errorf("failed to count articles of supplier %d: %w", supplierID, err)
	}
	return n, nil
}
