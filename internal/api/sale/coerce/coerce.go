// Package coerce chuyển đổi giá trị số và ngày tháng từ input không đồng nhất (chuỗi, số, time, BSON).
// Mọi hàm trả về (giá trị, ok); parse thất bại chỉ trả ok=false, không bao giờ trả lỗi hay panic.
package coerce

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	isoPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	dayMonthY = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
)

// các layout ISO thử lần lượt, layout không có múi giờ dùng location truyền vào
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseNumber nhận số Go, json.Number hoặc chuỗi số (có thể có khoảng trắng).
// Chuỗi rỗng, nil, chuỗi không phải số, NaN và ±Inf đều cho ok=false.
func ParseNumber(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		return parseNumberString(v.String())
	case primitive.Decimal128:
		return parseNumberString(v.String())
	case string:
		return parseNumberString(v)
	case *string:
		if v == nil {
			return 0, false
		}
		return parseNumberString(*v)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseNumberString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseInt giống ParseNumber nhưng cắt phần thập phân (dùng cho age, quantity)
func ParseInt(raw any) (int64, bool) {
	f, ok := ParseNumber(raw)
	if !ok || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

// ParseDate parse ngày tháng theo location UTC
func ParseDate(raw any) (time.Time, bool) {
	return ParseDateIn(raw, time.UTC)
}

// ParseDateIn nhận time.Time, primitive.DateTime hoặc chuỗi. Chuỗi được thử lần lượt:
// (1) tiền tố ISO YYYY-MM-DD, (2) D-M-YYYY / DD-MM-YYYY (ngày-tháng-năm), (3) parse tự do.
// Ngày không kèm múi giờ được hiểu theo loc.
func ParseDateIn(raw any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	switch v := raw.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false
		}
		return *v, true
	case primitive.DateTime:
		return v.Time().UTC(), true
	case string:
		return parseDateString(v, loc)
	case json.Number:
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

func parseDateString(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if isoPrefix.MatchString(s) {
		for _, layout := range isoLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t, true
			}
		}
		if t, err := time.ParseInLocation("2006-01-02", s[:10], loc); err == nil {
			return t, true
		}
	}

	if m := dayMonthY.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 {
			t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
			// time.Date tự chuẩn hóa 31-02 thành tháng 3, loại trường hợp này
			if t.Day() == day && int(t.Month()) == month {
				return t, true
			}
		}
	}

	if t, err := dateparse.ParseIn(s, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// StartOfNextDay trả về 00:00 của ngày kế tiếp theo lịch (dùng cho cận trên exclusive)
func StartOfNextDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
