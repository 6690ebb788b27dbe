package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/coerce"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/fieldmap"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/models"
)

// column là vị trí một cột CSV đã nhận diện được
type column struct {
	index int
	field fieldmap.Field
}

// resolveHeader nhận diện cột theo nhãn vật lý ("Customer Name") hoặc tên logic ("customerName"),
// không phân biệt hoa thường. Cột lạ bị bỏ qua.
func resolveHeader(header []string) ([]column, []string) {
	lookup := make(map[string]fieldmap.Field)
	for _, f := range fieldmap.Fields() {
		lookup[strings.ToLower(f.Physical)] = f
		lookup[strings.ToLower(f.Logical)] = f
	}

	cols := make([]column, 0, len(header))
	seen := make(map[string]bool)
	var unknown []string
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		f, ok := lookup[key]
		if !ok {
			if key != "" {
				unknown = append(unknown, h)
			}
			continue
		}
		if seen[f.Logical] {
			continue
		}
		seen[f.Logical] = true
		cols = append(cols, column{index: i, field: f})
	}
	return cols, unknown
}

type docSetter func(d *models.SaleDocument, raw string, loc *time.Location) error

func stringDoc(dst func(*models.SaleDocument) *string) docSetter {
	return func(d *models.SaleDocument, raw string, _ *time.Location) error {
		*dst(d) = raw
		return nil
	}
}

func intDoc(dst func(*models.SaleDocument) **int64) docSetter {
	return func(d *models.SaleDocument, raw string, _ *time.Location) error {
		n, ok := coerce.ParseInt(raw)
		if !ok {
			return fmt.Errorf("không phải số nguyên: %q", raw)
		}
		*dst(d) = &n
		return nil
	}
}

func numberDoc(dst func(*models.SaleDocument) **float64) docSetter {
	return func(d *models.SaleDocument, raw string, _ *time.Location) error {
		n, ok := coerce.ParseNumber(raw)
		if !ok {
			return fmt.Errorf("không phải số: %q", raw)
		}
		*dst(d) = &n
		return nil
	}
}

var docSetters = map[string]docSetter{
	fieldmap.TransactionID:  stringDoc(func(d *models.SaleDocument) *string { return &d.TransactionID }),
	fieldmap.CustomerID:     stringDoc(func(d *models.SaleDocument) *string { return &d.CustomerID }),
	fieldmap.CustomerName:   stringDoc(func(d *models.SaleDocument) *string { return &d.CustomerName }),
	fieldmap.PhoneNumber:    stringDoc(func(d *models.SaleDocument) *string { return &d.PhoneNumber }),
	fieldmap.Gender:         stringDoc(func(d *models.SaleDocument) *string { return &d.Gender }),
	fieldmap.CustomerRegion: stringDoc(func(d *models.SaleDocument) *string { return &d.CustomerRegion }),
	fieldmap.CustomerType:   stringDoc(func(d *models.SaleDocument) *string { return &d.CustomerType }),

	fieldmap.ProductID:       stringDoc(func(d *models.SaleDocument) *string { return &d.ProductID }),
	fieldmap.ProductName:     stringDoc(func(d *models.SaleDocument) *string { return &d.ProductName }),
	fieldmap.Brand:           stringDoc(func(d *models.SaleDocument) *string { return &d.Brand }),
	fieldmap.ProductCategory: stringDoc(func(d *models.SaleDocument) *string { return &d.ProductCategory }),

	fieldmap.PaymentMethod: stringDoc(func(d *models.SaleDocument) *string { return &d.PaymentMethod }),
	fieldmap.OrderStatus:   stringDoc(func(d *models.SaleDocument) *string { return &d.OrderStatus }),
	fieldmap.DeliveryType:  stringDoc(func(d *models.SaleDocument) *string { return &d.DeliveryType }),

	fieldmap.StoreID:       stringDoc(func(d *models.SaleDocument) *string { return &d.StoreID }),
	fieldmap.StoreLocation: stringDoc(func(d *models.SaleDocument) *string { return &d.StoreLocation }),
	fieldmap.SalespersonID: stringDoc(func(d *models.SaleDocument) *string { return &d.SalespersonID }),
	fieldmap.EmployeeName:  stringDoc(func(d *models.SaleDocument) *string { return &d.EmployeeName }),

	fieldmap.Age:                intDoc(func(d *models.SaleDocument) **int64 { return &d.Age }),
	fieldmap.Quantity:           intDoc(func(d *models.SaleDocument) **int64 { return &d.Quantity }),
	fieldmap.PricePerUnit:       numberDoc(func(d *models.SaleDocument) **float64 { return &d.PricePerUnit }),
	fieldmap.DiscountPercentage: numberDoc(func(d *models.SaleDocument) **float64 { return &d.DiscountPercentage }),
	fieldmap.TotalAmount:        numberDoc(func(d *models.SaleDocument) **float64 { return &d.TotalAmount }),
	fieldmap.FinalAmount:        numberDoc(func(d *models.SaleDocument) **float64 { return &d.FinalAmount }),

	fieldmap.Date: func(d *models.SaleDocument, raw string, loc *time.Location) error {
		t, ok := coerce.ParseDateIn(raw, loc)
		if !ok {
			return fmt.Errorf("ngày không hợp lệ: %q", raw)
		}
		d.Date = &t
		return nil
	},
	fieldmap.Tags: func(d *models.SaleDocument, raw string, _ *time.Location) error {
		d.Tags = fieldmap.JoinTags(splitRawTags(raw))
		return nil
	},
}

// splitRawTags chấp nhận tags phân cách bằng "|" hoặc ","
func splitRawTags(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == '|' || r == ','
	})
}

// toDocument chuyển một dòng CSV thành document; ô rỗng được bỏ qua (field vắng mặt)
func toDocument(record []string, cols []column, loc *time.Location) (models.SaleDocument, error) {
	var doc models.SaleDocument
	for _, col := range cols {
		if col.index >= len(record) {
			continue
		}
		raw := strings.TrimSpace(record[col.index])
		if raw == "" {
			continue
		}
		set, ok := docSetters[col.field.Logical]
		if !ok {
			continue
		}
		if err := set(&doc, raw, loc); err != nil {
			return doc, fmt.Errorf("cột %q: %w", col.field.Physical, err)
		}
	}
	return doc, nil
}
