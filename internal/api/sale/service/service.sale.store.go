// Package salesvc chứa logic truy vấn/lọc collection sales: thực thi truy vấn phân trang,
// tính tập giá trị cho bộ lọc và lớp lưu trữ (MongoDB hoặc bộ nhớ).
package salesvc

import (
	"context"

	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/models"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/predicate"
)

// SortSpec là field vật lý và chiều sắp xếp (1 tăng, -1 giảm)
type SortSpec struct {
	Field string
	Order int
}

// SaleStore là lớp lưu trữ mà service truy vấn. Document trả về dùng tên cột vật lý.
type SaleStore interface {
	Find(ctx context.Context, p predicate.Predicate, sort SortSpec, skip, limit int64) ([]map[string]any, error)
	Count(ctx context.Context, p predicate.Predicate) (int64, error)
	// Distinct trả về giá trị duy nhất thô của một cột, chưa lọc rỗng và chưa sắp xếp
	Distinct(ctx context.Context, field string) ([]any, error)
	// DistinctTags trả về hợp các tag (đã tách, trim, bỏ rỗng) trên toàn collection
	DistinctTags(ctx context.Context) ([]string, error)
	// AgeBounds trả về min/max tuổi; nil khi không có bản ghi nào có tuổi
	AgeBounds(ctx context.Context) (min, max *float64, err error)
	InsertMany(ctx context.Context, docs []models.SaleDocument) (int, error)
	Ping(ctx context.Context) error
}
