// Package dto - DTO cho domain sales.
package dto

// SaleQueryParams là query string của GET /sales.
// Các tham số phân trang giữ dạng chuỗi: giá trị sai được thay bằng mặc định, không bị từ chối.
type SaleQueryParams struct {
	Page      string `query:"page" json:"page"`
	PageSize  string `query:"pageSize" json:"pageSize"`
	SortBy    string `query:"sortBy" json:"sortBy" validate:"omitempty,field_name"`
	SortOrder string `query:"sortOrder" json:"sortOrder"`
	Search    string `query:"search" json:"search" validate:"max=200"`
	Filters   string `query:"filters" json:"filters"` // JSON object, có thể đã bị URL-encode thêm một lần
}

// SaleUploadResponse là kết quả POST /sales/upload-csv
type SaleUploadResponse struct {
	ImportID       string   `json:"importId"`
	FileName       string   `json:"fileName"`
	FileSize       string   `json:"fileSize"`
	Rows           int      `json:"rows"`
	Inserted       int      `json:"inserted"`
	Skipped        int      `json:"skipped"`
	Failed         int      `json:"failed"`
	UnknownColumns []string `json:"unknownColumns,omitempty"`
	DurationMs     int64    `json:"durationMs"`
}
