package predicate

import (
	"reflect"
	"regexp"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var regexCache sync.Map // pattern string -> *regexp.Regexp

// Matches đánh giá predicate trên một document trong bộ nhớ (key là tên cột vật lý).
// So sánh theo kiểu như MongoDB: số chỉ so với số, ngày chỉ so với ngày, chuỗi chỉ so với chuỗi.
func Matches(p Predicate, doc map[string]any) bool {
	switch p.Op {
	case OpAll:
		return true
	case OpAnd:
		for _, c := range p.Children {
			if !Matches(c, doc) {
				return false
			}
		}
		return true
	case OpOr:
		for _, c := range p.Children {
			if Matches(c, doc) {
				return true
			}
		}
		return false
	case OpEq:
		return equalValues(doc[p.Field], p.Value)
	case OpIn:
		v := doc[p.Field]
		for _, want := range p.Values {
			if equalValues(v, want) {
				return true
			}
		}
		return false
	case OpRange:
		v, ok := doc[p.Field]
		if !ok || v == nil {
			return false
		}
		if p.Gte != nil {
			if c, ok := compareValues(v, p.Gte); !ok || c < 0 {
				return false
			}
		}
		if p.Lte != nil {
			if c, ok := compareValues(v, p.Lte); !ok || c > 0 {
				return false
			}
		}
		if p.Lt != nil {
			if c, ok := compareValues(v, p.Lt); !ok || c >= 0 {
				return false
			}
		}
		return true
	case OpRegex:
		s, ok := doc[p.Field].(string)
		if !ok {
			return false
		}
		re := compileRegex(p.Pattern, p.Fold)
		return re != nil && re.MatchString(s)
	}
	return false
}

func compileRegex(pattern string, fold bool) *regexp.Regexp {
	key := pattern
	if fold {
		key = "(?i)" + pattern
	}
	if re, ok := regexCache.Load(key); ok {
		return re.(*regexp.Regexp)
	}
	re, err := regexp.Compile(key)
	if err != nil {
		return nil
	}
	regexCache.Store(key, re)
	return re
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if c, ok := compareValues(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

// compareValues so sánh hai giá trị cùng nhóm kiểu, ok=false nếu khác nhóm
func compareValues(a, b any) (int, bool) {
	if fa, ok := asNumber(a); ok {
		fb, ok := asNumber(b)
		if !ok {
			return 0, false
		}
		return cmp3(fa < fb, fa > fb), true
	}
	if ta, ok := asTime(a); ok {
		tb, ok := asTime(b)
		if !ok {
			return 0, false
		}
		return cmp3(ta.Before(tb), ta.After(tb)), true
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		if !ok {
			return 0, false
		}
		return cmp3(sa < sb, sa > sb), true
	}
	return 0, false
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case primitive.DateTime:
		return t.Time(), true
	}
	return time.Time{}, false
}
