package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/coerce"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/fieldmap"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type setter func(s *Sale, v any)

func stringSetter(dst func(*Sale) *string) setter {
	return func(s *Sale, v any) {
		if str, ok := asString(v); ok {
			*dst(s) = str
		}
	}
}

func intSetter(dst func(*Sale) **int64) setter {
	return func(s *Sale, v any) {
		if n, ok := coerce.ParseInt(v); ok {
			*dst(s) = &n
		}
	}
}

func numberSetter(dst func(*Sale) **float64) setter {
	return func(s *Sale, v any) {
		if n, ok := coerce.ParseNumber(v); ok {
			*dst(s) = &n
		}
	}
}

// setters theo tên field logic; mọi field trong fieldmap phải có mặt ở đây
var setters = map[string]setter{
	fieldmap.TransactionID:  stringSetter(func(s *Sale) *string { return &s.TransactionID }),
	fieldmap.CustomerID:     stringSetter(func(s *Sale) *string { return &s.CustomerID }),
	fieldmap.CustomerName:   stringSetter(func(s *Sale) *string { return &s.CustomerName }),
	fieldmap.PhoneNumber:    stringSetter(func(s *Sale) *string { return &s.PhoneNumber }),
	fieldmap.Gender:         stringSetter(func(s *Sale) *string { return &s.Gender }),
	fieldmap.CustomerRegion: stringSetter(func(s *Sale) *string { return &s.CustomerRegion }),
	fieldmap.CustomerType:   stringSetter(func(s *Sale) *string { return &s.CustomerType }),

	fieldmap.ProductID:       stringSetter(func(s *Sale) *string { return &s.ProductID }),
	fieldmap.ProductName:     stringSetter(func(s *Sale) *string { return &s.ProductName }),
	fieldmap.Brand:           stringSetter(func(s *Sale) *string { return &s.Brand }),
	fieldmap.ProductCategory: stringSetter(func(s *Sale) *string { return &s.ProductCategory }),

	fieldmap.PaymentMethod: stringSetter(func(s *Sale) *string { return &s.PaymentMethod }),
	fieldmap.OrderStatus:   stringSetter(func(s *Sale) *string { return &s.OrderStatus }),
	fieldmap.DeliveryType:  stringSetter(func(s *Sale) *string { return &s.DeliveryType }),

	fieldmap.StoreID:       stringSetter(func(s *Sale) *string { return &s.StoreID }),
	fieldmap.StoreLocation: stringSetter(func(s *Sale) *string { return &s.StoreLocation }),
	fieldmap.SalespersonID: stringSetter(func(s *Sale) *string { return &s.SalespersonID }),
	fieldmap.EmployeeName:  stringSetter(func(s *Sale) *string { return &s.EmployeeName }),

	fieldmap.Age:      intSetter(func(s *Sale) **int64 { return &s.Age }),
	fieldmap.Quantity: intSetter(func(s *Sale) **int64 { return &s.Quantity }),

	fieldmap.PricePerUnit:       numberSetter(func(s *Sale) **float64 { return &s.PricePerUnit }),
	fieldmap.DiscountPercentage: numberSetter(func(s *Sale) **float64 { return &s.DiscountPercentage }),
	fieldmap.TotalAmount:        numberSetter(func(s *Sale) **float64 { return &s.TotalAmount }),
	fieldmap.FinalAmount:        numberSetter(func(s *Sale) **float64 { return &s.FinalAmount }),

	fieldmap.Date: func(s *Sale, v any) {
		if t, ok := coerce.ParseDate(v); ok {
			s.Date = &t
		}
	},
	fieldmap.Tags: func(s *Sale, v any) {
		s.Tags = tagsOf(v)
	},
}

// NormalizeSale chuyển document vật lý thành Sale. Field không có trong bảng ánh xạ bị bỏ,
// giá trị không đọc được coi như không có.
func NormalizeSale(doc map[string]any) Sale {
	sale := Sale{ID: doc["_id"], Tags: []string{}}
	for physical, v := range doc {
		if v == nil {
			continue
		}
		f, ok := fieldmap.ToLogical(physical)
		if !ok {
			continue
		}
		if set, ok := setters[f.Logical]; ok {
			set(&sale, v)
		}
	}
	if sale.Tags == nil {
		sale.Tags = []string{}
	}
	return sale
}

// NormalizeSales chuẩn hóa cả trang kết quả
func NormalizeSales(docs []map[string]any) []Sale {
	out := make([]Sale, 0, len(docs))
	for _, d := range docs {
		out = append(out, NormalizeSale(d))
	}
	return out
}

func asString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case primitive.ObjectID:
		return s.Hex(), true
	case time.Time, primitive.DateTime, primitive.A, primitive.M, primitive.D, []any, map[string]any:
		return "", false
	case float64:
		// mã số (Customer ID, Phone Number) có thể được import dạng số
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case fmt.Stringer:
		return s.String(), true
	default:
		return strings.TrimSpace(fmt.Sprint(s)), true
	}
}

func tagsOf(v any) []string {
	switch t := v.(type) {
	case string:
		return fieldmap.SplitTags(t)
	case []string:
		return fieldmap.SplitTags(fieldmap.JoinTags(t))
	case primitive.A:
		return tagsOf([]any(t))
	case []any:
		parts := make([]string, 0, len(t))
		for _, it := range t {
			if s, ok := it.(string); ok {
				parts = append(parts, s)
			}
		}
		return fieldmap.SplitTags(fieldmap.JoinTags(parts))
	}
	return []string{}
}
