package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/automatenwerk/stockpilot/internal/cache"
	"github.com/automatenwerk/stockpilot/internal/config"
	"github.com/automatenwerk/stockpilot/internal/domain"
	"github.com/automatenwerk/stockpilot/internal/export"
	"github.com/automatenwerk/stockpilot/internal/reorder"
	"github.com/automatenwerk/stockpilot/internal/repository"
	"github.com/automatenwerk/stockpilot/internal/storage"
	"github.com/automatenwerk/stockpilot/internal/tablestate"
)

var reorderColumns = tablestate.Columns[domain.ReorderRow]{
	"name": func(a, b domain.ReorderRow) bool {
		return strings.ToLower(a.ArticleName) < strings.ToLower(b.ArticleName)
	},
	"stock": func(a, b domain.ReorderRow) bool { return a.Stock < b.Stock },
	// unrounded quantity, so 10.4 and 9.6 keep their order after rounding to 10
	"order_qty": func(a, b domain.ReorderRow) bool { return a.SortKey < b.SortKey },
}

// ReorderService turns stock and sales history into order suggestions.
type ReorderService struct {
	repos      repository.Repositories
	cache      cache.ReorderCache
	archive    storage.ObjectStorage
	estimator  *reorder.Estimator
	windowDays int
	now        func() time.Time
}

// NewReorderService builds the service. archive may be nil, in which case
// exports are not archived.
func NewReorderService(repos repository.Repositories, cacheImpl cache.ReorderCache, archive storage.ObjectStorage, cfg config.ReorderConfig) *ReorderService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopReorderCache()
	}

	windowDays := cfg.WindowDays
	if windowDays <= 0 {
		windowDays = reorder.WindowDays
	}

	return &ReorderService{
		repos:      repos,
		cache:      cacheImpl,
		archive:    archive,
		estimator:  reorder.NewEstimator(paramsFromConfig(cfg)),
		windowDays: windowDays,
		now:        time.Now,
	}
}

func paramsFromConfig(cfg config.ReorderConfig) reorder.Params {
	p := reorder.DefaultParams()
	if cfg.ServiceLevelZ > 0 {
		p.Z = cfg.ServiceLevelZ
	}
	if cfg.ReviewDays > 0 {
		p.ReviewDays = cfg.ReviewDays
	}
	if cfg.DefaultLeadTime > 0 {
		p.DefaultLeadTime = cfg.DefaultLeadTime
	}
	return p
}

// Suggestions returns one page of order suggestions.
func (s *ReorderService) Suggestions(ctx context.Context, filter domain.ReorderFilter) (*domain.ReorderResponse, error) {
	asOf := s.now()
	if resp, ok, err := s.cache.Get(ctx, asOf, filter); err == nil && ok {
		return resp, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("reorder: cache get failed")
	}

	rows, err := s.rows(ctx, asOf, filter)
	if err != nil {
		return nil, err
	}

	page := tablestate.Apply(rows, tablestate.Query[domain.ReorderRow]{
		SortKey:  filter.SortField,
		SortDir:  tablestate.ParseSortDir(filter.SortDir),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, reorderColumns, "name")

	resp := &domain.ReorderResponse{
		Items:      page.Items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}

	if err := s.cache.Set(ctx, asOf, filter, resp); err != nil {
		log.Warn().Err(err).Msg("reorder: cache set failed")
	}

	return resp, nil
}

// Suggestion computes the suggestion for a single article.
func (s *ReorderService) Suggestion(ctx context.Context, articleID int64) (*domain.ReorderRow, error) {
	article, err := s.repos.Articles.Get(ctx, articleID)
	if err != nil {
		return nil, err
	}

	suppliers, err := s.supplierIndex(ctx)
	if err != nil {
		return nil, err
	}

	window, err := s.repos.Sales.Window(ctx, []int64{article.ID}, s.now(), s.windowDays)
	if err != nil {
		return nil, err
	}

	row := s.buildRow(*article, suppliers[article.SupplierID], window[article.ID])
	return &row, nil
}

// ExportFile is a rendered export ready for download.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Export renders every suggestion matching filter, ignoring paging. When an
// archive is configured the file is uploaded as well; upload errors are
// logged and do not fail the export.
func (s *ReorderService) Export(ctx context.Context, filter domain.ReorderFilter, format export.Format) (*ExportFile, error) {
	now := s.now()
	rows, err := s.rows(ctx, now, filter)
	if err != nil {
		return nil, err
	}

	sorted := tablestate.Sort(rows, filter.SortField, tablestate.ParseSortDir(filter.SortDir), reorderColumns, "name")

	data, err := export.Render(format, sorted)
	if err != nil {
		return nil, err
	}

	file := &ExportFile{
		Name:        "bestellvorschlaege-" + now.Format("20060102-150405") + format.Extension(),
		ContentType: format.ContentType(),
		Data:        data,
	}

	if s.archive != nil {
		key := now.Format("exports/2006/01/02/") + file.Name
		if err := s.archive.UploadObject(ctx, key, data); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("reorder: export archive failed")
		} else {
			log.Info().Str("key", key).Int("rows", len(sorted)).Msg("reorder: export archived")
		}
	}

	return file, nil
}

// rows computes the unsorted suggestions for every article matching filter
// from the sales window ending at asOf.
func (s *ReorderService) rows(ctx context.Context, asOf time.Time, filter domain.ReorderFilter) ([]domain.ReorderRow, error) {
	articles, err := s.repos.Articles.All(ctx)
	if err != nil {
		return nil, err
	}

	matching := make([]domain.Article, 0, len(articles))
	ids := make([]int64, 0, len(articles))
	for _, a := range articles {
		if filter.SupplierID != 0 && a.SupplierID != filter.SupplierID {
			continue
		}
		if !tablestate.ContainsFold(a.Name, filter.Search) {
			continue
		}
		matching = append(matching, a)
		ids = append(ids, a.ID)
	}

	suppliers, err := s.supplierIndex(ctx)
	if err != nil {
		return nil, err
	}

	windows, err := s.repos.Sales.Window(ctx, ids, asOf, s.windowDays)
	if err != nil {
		return nil, fmt.Errorf("failed to load sales history: %w", err)
	}

	rows := make([]domain.ReorderRow, 0, len(matching))
	for _, a := range matching {
		rows = append(rows, s.buildRow(a, suppliers[a.SupplierID], windows[a.ID]))
	}
	return rows, nil
}

func (s *ReorderService) supplierIndex(ctx context.Context) (map[int64]*domain.Supplier, error) {
	suppliers, err := s.repos.Suppliers.All(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[int64]*domain.Supplier, len(suppliers))
	for i := range suppliers {
		index[suppliers[i].ID] = &suppliers[i]
	}
	return index, nil
}

// buildRow runs the estimator for one article. supplier is nil when the
// article has none or it was deleted; the estimator then uses its default
// lead time.
func (s *ReorderService) buildRow(a domain.Article, supplier *domain.Supplier, daily []float64) domain.ReorderRow {
	var rs *reorder.Supplier
	supplierName := ""
	if supplier != nil {
		rs = &reorder.Supplier{ID: supplier.ID, LeadTimeDays: supplier.LeadTimeDays}
		supplierName = supplier.Name
	}

	res := s.estimator.Compute(reorder.NewArticle(a.ID, a.Stock, a.SupplierID, daily), rs)

	return domain.ReorderRow{
		ArticleID:              a.ID,
		ArticleName:            a.Name,
		EAN:                    a.EAN,
		Stock:                  a.Stock,
		SupplierID:             a.SupplierID,
		SupplierName:           supplierName,
		LeadTimeDays:           res.LeadTimeDays,
		AverageDailyDemand:     reorder.DisplayDemand(res.AverageDailyDemand),
		TrendFactor:            reorder.DisplayTrend(res.TrendFactor),
		SafetyStock:            reorder.DisplaySafetyStock(res.SafetyStock),
		SuggestedOrderQuantity: res.SuggestedOrderQuantity,
		OrderValue:             a.NetPurchasePrice.Mul(decimal.NewFromInt(int64(res.SuggestedOrderQuantity))).Round(2),
		SortKey:                res.SortKey(),
	}
}
