package predicate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/coerce"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/fieldmap"
)

// SearchFields là các field logic được tìm kiếm theo chuỗi con
var SearchFields = []string{
	fieldmap.CustomerName,
	fieldmap.PhoneNumber,
	fieldmap.CustomerID,
	fieldmap.ProductName,
}

// DefaultNumericFields là các field logic so sánh bằng theo số
var DefaultNumericFields = []string{
	fieldmap.Quantity,
	fieldmap.PricePerUnit,
	fieldmap.DiscountPercentage,
	fieldmap.TotalAmount,
	fieldmap.FinalAmount,
	fieldmap.Age,
}

// Options cấu hình Builder
type Options struct {
	// NumericFields bổ sung vào DefaultNumericFields, nhận tên logic hoặc vật lý
	NumericFields []string
	// Location dùng cho ngày không có múi giờ, mặc định UTC
	Location *time.Location
}

// Builder dựng Predicate từ search + filters. Builder bất biến sau khi tạo, dùng chung giữa các goroutine.
type Builder struct {
	numeric map[string]struct{}
	loc     *time.Location
}

// NewBuilder tạo Builder
func NewBuilder(opts Options) *Builder {
	b := &Builder{
		numeric: make(map[string]struct{}, len(DefaultNumericFields)+len(opts.NumericFields)),
		loc:     opts.Location,
	}
	if b.loc == nil {
		b.loc = time.UTC
	}
	for _, f := range DefaultNumericFields {
		b.numeric[fieldmap.ToPhysical(f)] = struct{}{}
	}
	for _, f := range opts.NumericFields {
		if f = strings.TrimSpace(f); f != "" {
			b.numeric[fieldmap.ToPhysical(f)] = struct{}{}
		}
	}
	return b
}

// Build dựng predicate. Filter không hợp lệ không gây lỗi, chỉ không tạo điều kiện cho key đó.
func (b *Builder) Build(search string, filters Filters) Predicate {
	parts := make([]Predicate, 0, len(filters)+1)

	if sp, ok := searchPredicate(search); ok {
		parts = append(parts, sp)
	}

	for _, key := range filters.Keys() {
		val := filters[key]
		if val.IsEmpty() {
			continue
		}
		if p, ok := b.buildKey(key, val); ok {
			parts = append(parts, p)
		}
	}

	return And(parts...)
}

func searchPredicate(search string) (Predicate, bool) {
	term := strings.TrimSpace(search)
	if term == "" {
		return Predicate{}, false
	}
	pattern := regexp.QuoteMeta(term)
	ors := make([]Predicate, 0, len(SearchFields))
	for _, f := range SearchFields {
		ors = append(ors, Regex(fieldmap.ToPhysical(f), pattern, true))
	}
	return Or(ors...), true
}

func (b *Builder) buildKey(key string, val Value) (Predicate, bool) {
	physical := fieldmap.ToPhysical(key)

	switch key {
	case fieldmap.Age, fieldmap.AgeRange:
		return b.ageRange(physical, val)
	case fieldmap.Date, fieldmap.DateRange:
		return b.dateRange(physical, val)
	}

	if key == fieldmap.Tags || physical == fieldmap.ToPhysical(fieldmap.Tags) {
		return tagsPredicate(physical, val)
	}

	switch val.Kind() {
	case KindList:
		items := cleanList(val.Items())
		if len(items) == 0 {
			return Predicate{}, false
		}
		return In(physical, items...), true
	case KindRange:
		return Predicate{}, false
	}

	raw := val.ScalarValue()
	if s, ok := raw.(string); ok && strings.Contains(s, ",") {
		if parts := fieldmap.SplitTags(s); len(parts) > 0 {
			items := make([]any, len(parts))
			for i, p := range parts {
				items[i] = p
			}
			return In(physical, items...), true
		}
	}

	if _, ok := b.numeric[physical]; ok {
		n, ok := coerce.ParseNumber(raw)
		if !ok {
			return Predicate{}, false
		}
		return Eq(physical, n), true
	}

	return Eq(physical, normalizeScalar(raw)), true
}

func (b *Builder) ageRange(field string, val Value) (Predicate, bool) {
	if val.Kind() != KindRange {
		return Predicate{}, false
	}
	items := val.Items()
	p := Predicate{Op: OpRange, Field: field}
	if n, ok := coerce.ParseNumber(items[0]); ok {
		p.Gte = n
	}
	if n, ok := coerce.ParseNumber(items[1]); ok {
		p.Lte = n
	}
	if p.Gte == nil && p.Lte == nil {
		return Predicate{}, false
	}
	return p, true
}

func (b *Builder) dateRange(field string, val Value) (Predicate, bool) {
	if val.Kind() != KindRange {
		return Predicate{}, false
	}
	items := val.Items()
	p := Predicate{Op: OpRange, Field: field}
	if from, ok := coerce.ParseDateIn(items[0], b.loc); ok {
		p.Gte = from
	}
	if to, ok := coerce.ParseDateIn(items[1], b.loc); ok {
		p.Lt = coerce.StartOfNextDay(to)
	}
	if p.Gte == nil && p.Lt == nil {
		return Predicate{}, false
	}
	return p, true
}

// tagsPredicate: mỗi tag là một regex nguyên từ, không phân biệt hoa thường, gộp bằng OR
func tagsPredicate(field string, val Value) (Predicate, bool) {
	var tags []string
	switch val.Kind() {
	case KindList:
		for _, item := range val.Items() {
			if item == nil {
				continue
			}
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				tags = append(tags, s)
			}
		}
	case KindScalar:
		tags = fieldmap.SplitTags(fmt.Sprint(val.ScalarValue()))
	}
	if len(tags) == 0 {
		return Predicate{}, false
	}

	ors := make([]Predicate, 0, len(tags))
	for _, t := range tags {
		ors = append(ors, Regex(field, TagPattern(t), true))
	}
	return Or(ors...), true
}

// TagPattern trả về regex khớp nguyên từ cho một tag
func TagPattern(tag string) string {
	return `\b` + regexp.QuoteMeta(tag) + `\b`
}

func cleanList(items []any) []any {
	out := make([]any, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case nil:
			continue
		case string:
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		default:
			out = append(out, normalizeScalar(v))
		}
	}
	return out
}

// normalizeScalar đổi json.Number về int64/float64 để so sánh đúng kiểu với dữ liệu lưu trữ
func normalizeScalar(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
