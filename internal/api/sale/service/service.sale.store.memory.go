package salesvc

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/coerce"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/fieldmap"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/models"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/predicate"
	"github.com/vamsikrishnavetsa/truestate/internal/common"
)

// MemorySaleStore giữ document trong bộ nhớ, dùng cho chạy local (STORAGE_DRIVER=memory) và test.
// Document được chuyển qua BSON khi ghi nên có cùng kiểu giá trị như khi đọc từ MongoDB.
type MemorySaleStore struct {
	mu   sync.RWMutex
	docs []bson.M
}

// NewMemorySaleStore tạo store rỗng
func NewMemorySaleStore() *MemorySaleStore {
	return &MemorySaleStore{}
}

// InsertMany thêm document, gán _id mới cho từng document
func (s *MemorySaleStore) InsertMany(ctx context.Context, docs []models.SaleDocument) (int, error) {
	converted := make([]bson.M, 0, len(docs))
	for _, d := range docs {
		raw, err := bson.Marshal(d)
		if err != nil {
			return 0, common.Wrap(common.ErrInvalidFormat, err)
		}
		var m bson.M
		if err := bson.Unmarshal(raw, &m); err != nil {
			return 0, common.Wrap(common.ErrInvalidFormat, err)
		}
		m["_id"] = primitive.NewObjectID()
		converted = append(converted, m)
	}
	return s.insertRaw(converted), nil
}

// InsertRaw thêm document vật lý nguyên dạng (dùng khi cần dữ liệu không đi qua SaleDocument)
func (s *MemorySaleStore) InsertRaw(docs ...map[string]any) int {
	converted := make([]bson.M, 0, len(docs))
	for _, d := range docs {
		m := bson.M{}
		for k, v := range d {
			m[k] = v
		}
		if _, ok := m["_id"]; !ok {
			m["_id"] = primitive.NewObjectID()
		}
		converted = append(converted, m)
	}
	return s.insertRaw(converted)
}

func (s *MemorySaleStore) insertRaw(docs []bson.M) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = append(s.docs, docs...)
	return len(docs)
}

func (s *MemorySaleStore) match(p predicate.Predicate) []bson.M {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]bson.M, 0)
	for _, d := range s.docs {
		if predicate.Matches(p, d) {
			out = append(out, d)
		}
	}
	return out
}

// Find lọc, sắp xếp (null/thiếu field đứng đầu khi tăng dần) rồi cắt trang
func (s *MemorySaleStore) Find(ctx context.Context, p predicate.Predicate, spec SortSpec, skip, limit int64) ([]map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	matched := s.match(p)
	sort.SliceStable(matched, func(i, j int) bool {
		c := compareForSort(matched[i][spec.Field], matched[j][spec.Field])
		if spec.Order < 0 {
			return c > 0
		}
		return c < 0
	})

	if skip < 0 {
		skip = 0
	}
	if skip >= int64(len(matched)) {
		return []map[string]any{}, nil
	}
	end := int64(len(matched))
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}

	out := make([]map[string]any, 0, end-skip)
	for _, d := range matched[skip:end] {
		out = append(out, d)
	}
	return out, nil
}

// Count đếm document khớp predicate
func (s *MemorySaleStore) Count(ctx context.Context, p predicate.Predicate) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, common.ConvertMongoError(err)
	}
	return int64(len(s.match(p))), nil
}

// Distinct lấy giá trị duy nhất của một cột
func (s *MemorySaleStore) Distinct(ctx context.Context, field string) ([]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[any]struct{})
	out := make([]any, 0)
	for _, d := range s.docs {
		v, ok := d[field]
		if !ok {
			continue
		}
		switch v.(type) {
		case primitive.A, bson.M, bson.D, []any, map[string]any:
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// DistinctTags gộp tag của mọi document
func (s *MemorySaleStore) DistinctTags(ctx context.Context) ([]string, error) {
	field := fieldmap.ToPhysical(fieldmap.Tags)
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, d := range s.docs {
		str, ok := d[field].(string)
		if !ok {
			continue
		}
		for _, t := range fieldmap.SplitTags(str) {
			if _, dup := seen[t]; !dup {
				seen[t] = struct{}{}
				out = append(out, t)
			}
		}
	}
	return out, nil
}

// AgeBounds tính min/max tuổi
func (s *MemorySaleStore) AgeBounds(ctx context.Context) (*float64, *float64, error) {
	field := fieldmap.ToPhysical(fieldmap.Age)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var lo, hi *float64
	for _, d := range s.docs {
		v, ok := d[field]
		if !ok || v == nil {
			continue
		}
		if _, isString := v.(string); isString {
			continue
		}
		n, ok := coerce.ParseNumber(v)
		if !ok {
			continue
		}
		if lo == nil || n < *lo {
			x := n
			lo = &x
		}
		if hi == nil || n > *hi {
			x := n
			hi = &x
		}
	}
	return lo, hi, nil
}

// Ping luôn thành công
func (s *MemorySaleStore) Ping(ctx context.Context) error {
	return nil
}

// thứ tự kiểu khi sắp xếp: null < số < chuỗi < ngày
func sortRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case int, int32, int64, float32, float64:
		return 1
	case string:
		return 2
	case time.Time, primitive.DateTime:
		return 4
	}
	return 3
}

func compareForSort(a, b any) int {
	ra, rb := sortRank(a), sortRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch ra {
	case 1:
		fa, _ := coerce.ParseNumber(a)
		fb, _ := coerce.ParseNumber(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
	case 2:
		return strings.Compare(a.(string), b.(string))
	case 4:
		ta, _ := coerce.ParseDate(a)
		tb, _ := coerce.ParseDate(b)
		return ta.Compare(tb)
	}
	return 0
}
