// Package predicate dựng điều kiện truy vấn (cây AND/OR của equality/range/membership/regex) cho collection sales
// từ chuỗi tìm kiếm và bộ filter không định kiểu do client gửi lên.
//
// Predicate là kiểu domain độc lập với storage: ToBSON render sang filter MongoDB,
// Matches đánh giá trực tiếp trên document trong bộ nhớ.
package predicate

// Op là loại node trong cây điều kiện
type Op int

const (
	OpAll   Op = iota // khớp mọi bản ghi
	OpAnd             // tất cả Children
	OpOr              // ít nhất một Children
	OpEq              // Field == Value
	OpIn              // Field thuộc Values
	OpRange           // Gte <= Field <= Lte, Field < Lt (cận nil bị bỏ qua)
	OpRegex           // Field khớp Pattern
)

// Predicate là một node trong cây điều kiện, Field luôn là tên cột vật lý
type Predicate struct {
	Op       Op
	Field    string
	Value    any
	Values   []any
	Gte      any
	Lte      any
	Lt       any
	Pattern  string
	Fold     bool // regex không phân biệt hoa thường
	Children []Predicate
}

// All trả về predicate khớp mọi bản ghi
func All() Predicate { return Predicate{Op: OpAll} }

// And gộp các predicate, bỏ qua node OpAll
func And(children ...Predicate) Predicate {
	kept := make([]Predicate, 0, len(children))
	for _, c := range children {
		if c.Op != OpAll {
			kept = append(kept, c)
		}
	}
	switch len(kept) {
	case 0:
		return All()
	case 1:
		return kept[0]
	}
	return Predicate{Op: OpAnd, Children: kept}
}

// Or trả về nhóm OR; Or rỗng không khớp gì nên người gọi phải tự tránh tạo nhóm rỗng
func Or(children ...Predicate) Predicate {
	return Predicate{Op: OpOr, Children: children}
}

// Eq so sánh bằng
func Eq(field string, value any) Predicate {
	return Predicate{Op: OpEq, Field: field, Value: value}
}

// In kiểm tra thuộc tập giá trị
func In(field string, values ...any) Predicate {
	return Predicate{Op: OpIn, Field: field, Values: values}
}

// Regex khớp mẫu, fold=true để không phân biệt hoa thường
func Regex(field, pattern string, fold bool) Predicate {
	return Predicate{Op: OpRegex, Field: field, Pattern: pattern, Fold: fold}
}

// IsAll cho biết predicate có phải "khớp tất cả" không
func (p Predicate) IsAll() bool {
	return p.Op == OpAll
}
