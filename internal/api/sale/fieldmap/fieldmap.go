// Package fieldmap ánh xạ hai chiều giữa tên field logic (API) và tên cột vật lý trong collection sales.
//
// Bảng ánh xạ được dựng một lần khi khởi động và không bao giờ thay đổi. Đây cũng là chỗ duy nhất
// biết cách tách/ghép chuỗi tags, để phần còn lại của code chỉ làm việc với []string.
package fieldmap

import "strings"

// Kind là kiểu dữ liệu logic của một field
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindNumber
	KindDate
	KindTags
)

// Field mô tả một cặp logic/vật lý
type Field struct {
	Logical  string
	Physical string
	Kind     Kind
}

// Tên field logic
const (
	TransactionID      = "transactionId"
	CustomerID         = "customerId"
	CustomerName       = "customerName"
	PhoneNumber        = "phoneNumber"
	Gender             = "gender"
	Age                = "age"
	CustomerRegion     = "customerRegion"
	CustomerType       = "customerType"
	ProductID          = "productId"
	ProductName        = "productName"
	Brand              = "brand"
	ProductCategory    = "productCategory"
	Tags               = "tags"
	Quantity           = "quantity"
	PricePerUnit       = "pricePerUnit"
	DiscountPercentage = "discountPercentage"
	TotalAmount        = "totalAmount"
	FinalAmount        = "finalAmount"
	Date               = "date"
	PaymentMethod      = "paymentMethod"
	OrderStatus        = "orderStatus"
	DeliveryType       = "deliveryType"
	StoreID            = "storeId"
	StoreLocation      = "storeLocation"
	SalespersonID      = "salespersonId"
	EmployeeName       = "employeeName"

	// Alias dùng trong filter range
	AgeRange  = "ageRange"
	DateRange = "dateRange"
)

// TagDelimiter là ký tự phân cách tags khi lưu trong DB
const TagDelimiter = ","

var fields = []Field{
	{TransactionID, "Transaction ID", KindString},
	{Date, "Date", KindDate},
	{CustomerID, "Customer ID", KindString},
	{CustomerName, "Customer Name", KindString},
	{PhoneNumber, "Phone Number", KindString},
	{Gender, "Gender", KindString},
	{Age, "Age", KindInteger},
	{CustomerRegion, "Customer Region", KindString},
	{CustomerType, "Customer Type", KindString},
	{ProductID, "Product ID", KindString},
	{ProductName, "Product Name", KindString},
	{Brand, "Brand", KindString},
	{ProductCategory, "Product Category", KindString},
	{Tags, "Tags", KindTags},
	{Quantity, "Quantity", KindInteger},
	{PricePerUnit, "Price per Unit", KindNumber},
	{DiscountPercentage, "Discount Percentage", KindNumber},
	{TotalAmount, "Total Amount", KindNumber},
	{FinalAmount, "Final Amount", KindNumber},
	{PaymentMethod, "Payment Method", KindString},
	{OrderStatus, "Order Status", KindString},
	{DeliveryType, "Delivery Type", KindString},
	{StoreID, "Store ID", KindString},
	{StoreLocation, "Store Location", KindString},
	{SalespersonID, "Salesperson ID", KindString},
	{EmployeeName, "Employee Name", KindString},
}

var (
	toPhysical = make(map[string]string, len(fields)+2)
	toLogical  = make(map[string]Field, len(fields))
)

func init() {
	for _, f := range fields {
		toPhysical[f.Logical] = f.Physical
		toLogical[f.Physical] = f
	}
	toPhysical[AgeRange] = toPhysical[Age]
	toPhysical[DateRange] = toPhysical[Date]
}

// ToPhysical trả về tên cột vật lý; key không có trong bảng được trả về nguyên vẹn
func ToPhysical(logical string) string {
	if p, ok := toPhysical[logical]; ok {
		return p
	}
	return logical
}

// ToLogical trả về field logic ứng với tên cột vật lý
func ToLogical(physical string) (Field, bool) {
	f, ok := toLogical[physical]
	return f, ok
}

// Fields trả về bản sao danh sách field theo thứ tự cố định
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// SplitTags tách chuỗi tags đã lưu thành danh sách (trim, bỏ phần tử rỗng)
func SplitTags(s string) []string {
	parts := strings.Split(s, TagDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinTags ghép danh sách tags thành chuỗi để lưu (trim, bỏ phần tử rỗng)
func JoinTags(tags []string) string {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	return strings.Join(clean, TagDelimiter)
}
