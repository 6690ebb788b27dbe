package salesvc

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/fieldmap"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/models"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/predicate"
	"github.com/vamsikrishnavetsa/truestate/internal/common"
	"github.com/vamsikrishnavetsa/truestate/internal/logger"
)

const (
	DefaultPage        int64 = 1
	DefaultPageSize    int64 = 10
	DefaultMaxPageSize int64 = 500
	DefaultSortField         = "Date"
	SortAscending            = 1
	SortDescending           = -1
)

// sortFields chấp nhận cả tên logic lẫn tên cột; tên khác được dùng nguyên văn
var sortFields = map[string]string{
	fieldmap.Date:         "Date",
	"Date":                "Date",
	fieldmap.Quantity:     "Quantity",
	"Quantity":            "Quantity",
	fieldmap.CustomerName: "Customer Name",
	"Customer Name":       "Customer Name",
	fieldmap.FinalAmount:  "Final Amount",
	"Final Amount":        "Final Amount",
}

// QueryInput là tham số truy vấn. Page/PageSize <= 0 dùng mặc định; SortOrder 0 = giảm dần.
type QueryInput struct {
	Page      int64
	PageSize  int64
	SortBy    string
	SortOrder int
	Search    string
	Filters   predicate.Filters
}

// QueryResult là một trang kết quả, Total luôn là tổng số bản ghi khớp (không phụ thuộc trang)
type QueryResult struct {
	Results  []models.Sale `json:"results"`
	Total    int64         `json:"total"`
	Page     int64         `json:"page"`
	PageSize int64         `json:"pageSize"`
}

// ResolveSort ánh xạ tên field sắp xếp và chiều sắp xếp
func ResolveSort(sortBy string, order int) SortSpec {
	field := sortBy
	if field == "" {
		field = DefaultSortField
	}
	if mapped, ok := sortFields[field]; ok {
		field = mapped
	}
	dir := SortDescending
	if order > 0 {
		dir = SortAscending
	}
	return SortSpec{Field: field, Order: dir}
}

func (s *SaleService) normalizePaging(page, pageSize int64) (int64, int64) {
	if page < 1 {
		page = DefaultPage
	}
	if pageSize < 1 {
		pageSize = s.opts.DefaultPageSize
	}
	if pageSize > s.opts.MaxPageSize {
		pageSize = s.opts.MaxPageSize
	}
	return page, pageSize
}

func (s *SaleService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.QueryTimeout > 0 {
		return context.WithTimeout(ctx, s.opts.QueryTimeout)
	}
	return context.WithCancel(ctx)
}

// QuerySales dựng predicate từ search/filters, lấy một trang đã sắp xếp và đếm tổng song song.
// Lỗi storage được trả về dạng common.ErrQueryFailed; không có kết quả không phải là lỗi.
func (s *SaleService) QuerySales(ctx context.Context, in QueryInput) (*QueryResult, error) {
	start := time.Now()
	page, pageSize := s.normalizePaging(in.Page, in.PageSize)
	sortSpec := ResolveSort(in.SortBy, in.SortOrder)
	pred := s.builder.Build(in.Search, in.Filters)
	skip := (page - 1) * pageSize

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		docs  []map[string]any
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		docs, err = s.store.Find(gctx, pred, sortSpec, skip, pageSize)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.Count(gctx, pred)
		return err
	})

	if err := g.Wait(); err != nil {
		logger.WithContext(ctx).WithFields(logrus.Fields{
			"module":   "sale",
			"page":     page,
			"pageSize": pageSize,
			"sortBy":   sortSpec.Field,
		}).WithError(err).Error("Truy vấn sales thất bại")
		return nil, common.Wrap(common.ErrQueryFailed, err)
	}

	logger.GetPerformanceLogger().WithFields(logrus.Fields{
		"operation":   "querySales",
		"duration_ms": time.Since(start).Milliseconds(),
		"page":        page,
		"pageSize":    pageSize,
		"returned":    len(docs),
		"total":       total,
		"matchAll":    pred.IsAll(),
	}).Debug("querySales")

	return &QueryResult{
		Results:  models.NormalizeSales(docs),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
