package salesvc

import (
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/predicate"
	"github.com/vamsikrishnavetsa/truestate/internal/utility"
)

// Options cấu hình SaleService
type Options struct {
	DefaultPageSize int64
	MaxPageSize     int64
	// QueryTimeout giới hạn mỗi lần truy vấn storage, 0 = dùng deadline của context gọi vào
	QueryTimeout time.Duration
	// FacetCacheTTL > 0 thì cache kết quả GetFilterOptions
	FacetCacheTTL time.Duration
}

// SaleService thực thi truy vấn danh sách sales và tính tập giá trị cho bộ lọc.
// Không giữ trạng thái theo request nên dùng chung được giữa các goroutine.
type SaleService struct {
	store   SaleStore
	builder *predicate.Builder
	opts    Options

	facetCache *utility.Cache
	facetGroup singleflight.Group
}

// NewSaleService tạo SaleService
func NewSaleService(store SaleStore, builder *predicate.Builder, opts Options) *SaleService {
	if builder == nil {
		builder = predicate.NewBuilder(predicate.Options{})
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = DefaultPageSize
	}
	if opts.MaxPageSize <= 0 {
		opts.MaxPageSize = DefaultMaxPageSize
	}
	if opts.DefaultPageSize > opts.MaxPageSize {
		opts.DefaultPageSize = opts.MaxPageSize
	}

	s := &SaleService{
		store:   store,
		builder: builder,
		opts:    opts,
	}
	if opts.FacetCacheTTL > 0 {
		s.facetCache = utility.NewCache(opts.FacetCacheTTL, opts.FacetCacheTTL)
	}
	return s
}

// Store trả về lớp lưu trữ đang dùng
func (s *SaleService) Store() SaleStore {
	return s.store
}

// Close giải phóng cache nền (nếu có)
func (s *SaleService) Close() {
	if s.facetCache != nil {
		s.facetCache.Close()
	}
}
