package salesvc

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/fieldmap"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/models"
	"github.com/vamsikrishnavetsa/truestate/internal/common"
	"github.com/vamsikrishnavetsa/truestate/internal/logger"
)

const facetCacheKey = "filter_options"

// GetFilterOptions trả về tập giá trị cho bộ lọc trên toàn collection (không phụ thuộc filter hiện tại).
// Khi bật cache, các request đồng thời lúc cache trống chỉ chạy một lần quét.
func (s *SaleService) GetFilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	if s.facetCache == nil {
		return s.computeFilterOptions(ctx)
	}

	if v, ok := s.facetCache.Get(facetCacheKey); ok {
		return v.(*models.FilterOptions), nil
	}

	v, err, _ := s.facetGroup.Do(facetCacheKey, func() (interface{}, error) {
		opts, err := s.computeFilterOptions(ctx)
		if err != nil {
			return nil, err
		}
		s.facetCache.Set(facetCacheKey, opts)
		return opts, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.FilterOptions), nil
}

// InvalidateFilterOptions xóa cache sau khi import dữ liệu mới
func (s *SaleService) InvalidateFilterOptions() {
	if s.facetCache != nil {
		s.facetCache.Delete(facetCacheKey)
	}
}

// RefreshFilterOptions tính lại filter options và ghi đè cache; không làm gì khi tắt cache
func (s *SaleService) RefreshFilterOptions(ctx context.Context) (bool, error) {
	if s.facetCache == nil {
		return false, nil
	}
	opts, err := s.computeFilterOptions(ctx)
	if err != nil {
		return false, err
	}
	s.facetCache.Set(facetCacheKey, opts)
	return true, nil
}

func (s *SaleService) computeFilterOptions(ctx context.Context) (*models.FilterOptions, error) {
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	out := &models.FilterOptions{}
	g, gctx := errgroup.WithContext(ctx)

	distinctInto := func(dst *[]string, logical string) {
		g.Go(func() error {
			values, err := s.store.Distinct(gctx, fieldmap.ToPhysical(logical))
			if err != nil {
				return err
			}
			*dst = cleanDistinct(values)
			return nil
		})
	}
	distinctInto(&out.CustomerRegion, fieldmap.CustomerRegion)
	distinctInto(&out.Gender, fieldmap.Gender)
	distinctInto(&out.ProductCategory, fieldmap.ProductCategory)
	distinctInto(&out.PaymentMethod, fieldmap.PaymentMethod)

	g.Go(func() error {
		tags, err := s.store.DistinctTags(gctx)
		if err != nil {
			return err
		}
		out.Tags = sortedUnique(tags)
		return nil
	})
	g.Go(func() error {
		lo, hi, err := s.store.AgeBounds(gctx)
		if err != nil {
			return err
		}
		out.AgeRange = models.AgeRange{Min: lo, Max: hi}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.WithContext(ctx).WithField("module", "sale").WithError(err).Error("Tính filter options thất bại")
		return nil, common.Wrap(common.ErrFilterOptionsFailed, err)
	}

	logger.GetPerformanceLogger().WithFields(logrus.Fields{
		"operation":   "getFilterOptions",
		"duration_ms": time.Since(start).Milliseconds(),
		"tags":        len(out.Tags),
	}).Debug("getFilterOptions")
	return out, nil
}

// cleanDistinct giữ các giá trị chuỗi khác rỗng, loại trùng và sắp xếp
func cleanDistinct(values []any) []string {
	strs := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			strs = append(strs, s)
		}
	}
	return sortedUnique(strs)
}

func sortedUnique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
