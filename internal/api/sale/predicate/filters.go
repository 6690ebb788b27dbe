package predicate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/fieldmap"
)

// Kind là dạng của một giá trị filter
type Kind int

const (
	KindScalar Kind = iota
	KindList
	KindRange
)

// Value là giá trị filter đã được phân loại tại biên (scalar / list / range)
type Value struct {
	kind   Kind
	scalar any
	list   []any
}

// Scalar tạo giá trị đơn
func Scalar(v any) Value { return Value{kind: KindScalar, scalar: v} }

// List tạo giá trị dạng danh sách (membership)
func List(vs ...any) Value { return Value{kind: KindList, list: vs} }

// Range tạo khoảng [low, high]; nil ở một đầu nghĩa là không giới hạn đầu đó
func Range(low, high any) Value { return Value{kind: KindRange, list: []any{low, high}} }

// Kind trả về dạng của giá trị
func (v Value) Kind() Kind { return v.kind }

// ScalarValue trả về giá trị đơn (nil nếu không phải scalar)
func (v Value) ScalarValue() any { return v.scalar }

// Items trả về danh sách phần tử của list/range
func (v Value) Items() []any { return v.list }

// IsEmpty: nil và chuỗi rỗng không phải là filter
func (v Value) IsEmpty() bool {
	if v.kind != KindScalar {
		return false
	}
	if v.scalar == nil {
		return true
	}
	s, ok := v.scalar.(string)
	return ok && s == ""
}

// Filters ánh xạ key logic -> giá trị filter
type Filters map[string]Value

// Keys trả về danh sách key đã sắp xếp, để predicate dựng ra luôn ổn định
func (f Filters) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Compact bỏ các entry rỗng
func (f Filters) Compact() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		if !v.IsEmpty() {
			out[k] = v
		}
	}
	return out
}

// isRangeKey cho biết key có ngữ nghĩa khoảng (age / date)
func isRangeKey(key string) bool {
	switch key {
	case fieldmap.Age, fieldmap.AgeRange, fieldmap.Date, fieldmap.DateRange:
		return true
	}
	return false
}

// ParseFilters parse JSON object từ client thành Filters.
// Với age/date, mảng 2 phần tử hoặc object {min,max} / {from,to} thành Range;
// null, chuỗi rỗng và object không nhận diện được bị bỏ qua. Chỉ trả lỗi khi JSON không hợp lệ.
func ParseFilters(raw []byte) (Filters, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Filters{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode filters: %w", err)
	}
	return FromMap(m), nil
}

// FromMap phân loại một map không định kiểu (đã decode từ JSON) thành Filters
func FromMap(m map[string]any) Filters {
	out := make(Filters, len(m))
	for key, rawVal := range m {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if v, ok := classify(key, rawVal); ok && !v.IsEmpty() {
			out[key] = v
		}
	}
	return out
}

func classify(key string, raw any) (Value, bool) {
	switch v := raw.(type) {
	case nil:
		return Value{}, false
	case []any:
		if isRangeKey(key) && len(v) == 2 {
			return Range(v[0], v[1]), true
		}
		return List(v...), true
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return classify(key, items)
	case map[string]any:
		if !isRangeKey(key) {
			return Value{}, false
		}
		if low, high, ok := rangeObject(v); ok {
			return Range(low, high), true
		}
		return Value{}, false
	default:
		return Scalar(v), true
	}
}

func rangeObject(m map[string]any) (any, any, bool) {
	if low, high := m["min"], m["max"]; low != nil || high != nil {
		return low, high, true
	}
	if low, high := m["from"], m["to"]; low != nil || high != nil {
		return low, high, true
	}
	return nil, nil, false
}
