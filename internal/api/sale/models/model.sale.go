// Package models - Sale thuộc domain bán lẻ (collection sales).
// Document lưu trong DB dùng nhãn cột của file CSV làm tên field; API trả về tên field logic.
package models

import (
	"time"
)

// Sale là bản ghi giao dịch trả về cho client (tên field logic).
// Giá trị không có trong DB bị bỏ khỏi JSON; tags luôn là mảng.
type Sale struct {
	ID any `json:"_id,omitempty"`

	TransactionID string     `json:"transactionId,omitempty"`
	Date          *time.Time `json:"date,omitempty"`

	// Customer
	CustomerID     string `json:"customerId,omitempty"`
	CustomerName   string `json:"customerName,omitempty"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Age            *int64 `json:"age,omitempty"`
	CustomerRegion string `json:"customerRegion,omitempty"`
	CustomerType   string `json:"customerType,omitempty"`

	// Product
	ProductID       string   `json:"productId,omitempty"`
	ProductName     string   `json:"productName,omitempty"`
	Brand           string   `json:"brand,omitempty"`
	ProductCategory string   `json:"productCategory,omitempty"`
	Tags            []string `json:"tags"`

	// Transaction
	Quantity           *int64   `json:"quantity,omitempty"`
	PricePerUnit       *float64 `json:"pricePerUnit,omitempty"`
	DiscountPercentage *float64 `json:"discountPercentage,omitempty"`
	TotalAmount        *float64 `json:"totalAmount,omitempty"`
	FinalAmount        *float64 `json:"finalAmount,omitempty"`
	PaymentMethod      string   `json:"paymentMethod,omitempty"`
	OrderStatus        string   `json:"orderStatus,omitempty"`
	DeliveryType       string   `json:"deliveryType,omitempty"`

	// Operational
	StoreID       string `json:"storeId,omitempty"`
	StoreLocation string `json:"storeLocation,omitempty"`
	SalespersonID string `json:"salespersonId,omitempty"`
	EmployeeName  string `json:"employeeName,omitempty"`
}

// SaleDocument là document vật lý ghi vào collection sales (dùng khi import).
// Tags được lưu dạng chuỗi nối bằng dấu phẩy.
type SaleDocument struct {
	TransactionID string     `bson:"Transaction ID,omitempty"`
	Date          *time.Time `bson:"Date,omitempty"`

	CustomerID     string `bson:"Customer ID,omitempty" validate:"required_without=CustomerName"`
	CustomerName   string `bson:"Customer Name,omitempty"`
	PhoneNumber    string `bson:"Phone Number,omitempty"`
	Gender         string `bson:"Gender,omitempty"`
	Age            *int64 `bson:"Age,omitempty" validate:"omitempty,gte=0,lte=150"`
	CustomerRegion string `bson:"Customer Region,omitempty"`
	CustomerType   string `bson:"Customer Type,omitempty"`

	ProductID       string `bson:"Product ID,omitempty"`
	ProductName     string `bson:"Product Name,omitempty"`
	Brand           string `bson:"Brand,omitempty"`
	ProductCategory string `bson:"Product Category,omitempty"`
	Tags            string `bson:"Tags,omitempty"`

	Quantity           *int64   `bson:"Quantity,omitempty" validate:"omitempty,gte=0"`
	PricePerUnit       *float64 `bson:"Price per Unit,omitempty" validate:"omitempty,gte=0"`
	DiscountPercentage *float64 `bson:"Discount Percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	TotalAmount        *float64 `bson:"Total Amount,omitempty"`
	FinalAmount        *float64 `bson:"Final Amount,omitempty"`
	PaymentMethod      string   `bson:"Payment Method,omitempty"`
	OrderStatus        string   `bson:"Order Status,omitempty"`
	DeliveryType       string   `bson:"Delivery Type,omitempty"`

	StoreID       string `bson:"Store ID,omitempty"`
	StoreLocation string `bson:"Store Location,omitempty"`
	SalespersonID string `bson:"Salesperson ID,omitempty"`
	EmployeeName  string `bson:"Employee Name,omitempty"`
}

// AgeRange là khoảng tuổi min/max, nil khi collection chưa có tuổi nào
type AgeRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// FilterOptions là tập giá trị lựa chọn cho bộ lọc, luôn tính trên toàn collection
type FilterOptions struct {
	CustomerRegion  []string `json:"customerRegion"`
	Gender          []string `json:"gender"`
	ProductCategory []string `json:"productCategory"`
	PaymentMethod   []string `json:"paymentMethod"`
	Tags            []string `json:"tags"`
	AgeRange        AgeRange `json:"ageRange"`
}
