// Package router đăng ký các route thuộc domain sales.
package router

import (
	"github.com/gofiber/fiber/v3"

	apirouter "github.com/vamsikrishnavetsa/truestate/internal/api/router"
	salehdl "github.com/vamsikrishnavetsa/truestate/internal/api/sale/handler"
)

// Register trả về hàm đăng ký tất cả route sales lên v1.
func Register(h *salehdl.SaleHandler) apirouter.RegisterFunc {
	return func(v1 fiber.Router, _ *apirouter.Router) error {
		// GET /sales: danh sách phân trang. Query: page, pageSize, sortBy, sortOrder, search, filters
		apirouter.RegisterRouteWithMiddleware(v1, "/sales", "GET", "", nil, h.HandleQuerySales)

		// GET /sales/filters: tập giá trị cho bộ lọc
		apirouter.RegisterRouteWithMiddleware(v1, "/sales", "GET", "/filters", nil, h.HandleGetFilterOptions)

		// POST /sales/upload-csv: import CSV (multipart, field "file")
		apirouter.RegisterRouteWithMiddleware(v1, "/sales", "POST", "/upload-csv", nil, h.HandleUploadCSV)
		return nil
	}
}
