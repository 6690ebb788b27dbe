// Package salehdl - Handler API danh sách sales, filter options và import CSV.
package salehdl

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	basehdl "github.com/vamsikrishnavetsa/truestate/internal/api/base/handler"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/dto"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/predicate"
	salesvc "github.com/vamsikrishnavetsa/truestate/internal/api/sale/service"
	"github.com/vamsikrishnavetsa/truestate/internal/common"
	"github.com/vamsikrishnavetsa/truestate/internal/global"
	"github.com/vamsikrishnavetsa/truestate/internal/ingest"
	"github.com/vamsikrishnavetsa/truestate/internal/logger"
	"github.com/vamsikrishnavetsa/truestate/internal/utility"
)

// SaleHandler xử lý API sales
type SaleHandler struct {
	SaleService *salesvc.SaleService
	Importer    *ingest.Importer
}

// NewSaleHandler tạo SaleHandler mới
func NewSaleHandler(svc *salesvc.SaleService, importer *ingest.Importer) *SaleHandler {
	global.InitValidator()
	return &SaleHandler{SaleService: svc, Importer: importer}
}

// HandleQuerySales xử lý GET /sales.
// Query: page, pageSize, sortBy, sortOrder, search, filters (JSON).
func (h *SaleHandler) HandleQuerySales(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		params := dto.SaleQueryParams{
			Page:      c.Query("page"),
			PageSize:  c.Query("pageSize"),
			SortBy:    c.Query("sortBy"),
			SortOrder: c.Query("sortOrder"),
			Search:    c.Query("search"),
			Filters:   c.Query("filters"),
		}
		if err := global.Validate.Struct(params); err != nil {
			return basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput, common.MsgValidationError, common.StatusBadRequest, err.Error()))
		}

		in := salesvc.QueryInput{
			Page:      parsePositive(params.Page),
			PageSize:  parsePositive(params.PageSize),
			SortBy:    strings.TrimSpace(params.SortBy),
			SortOrder: parseSortOrder(params.SortOrder),
			Search:    params.Search,
			Filters:   h.parseFilters(c, params.Filters),
		}

		ctx := logger.ContextWithRequestID(c.Context(), logger.RequestID(c))
		result, err := h.SaleService.QuerySales(ctx, in)
		return basehdl.HandleResponse(c, result, err)
	})
}

// HandleGetFilterOptions xử lý GET /sales/filters
func (h *SaleHandler) HandleGetFilterOptions(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		ctx := logger.ContextWithRequestID(c.Context(), logger.RequestID(c))
		options, err := h.SaleService.GetFilterOptions(ctx)
		return basehdl.HandleResponse(c, options, err)
	})
}

// HandleUploadCSV xử lý POST /sales/upload-csv (multipart, field "file")
func (h *SaleHandler) HandleUploadCSV(c fiber.Ctx) error {
	return basehdl.SafeHandler(c, func() error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return basehdl.HandleResponse(c, nil, common.NewError(
				common.ErrCodeValidationInput, "Chưa có file được upload", common.StatusBadRequest, nil))
		}

		file, err := fileHeader.Open()
		if err != nil {
			return basehdl.HandleResponse(c, nil, common.Wrap(common.ErrUploadFailed, err))
		}
		defer file.Close()

		ctx := logger.ContextWithRequestID(c.Context(), logger.RequestID(c))
		result, err := h.Importer.Import(ctx, file)
		if result != nil && result.Inserted > 0 {
			h.SaleService.InvalidateFilterOptions()
		}
		if err != nil {
			logger.WithRequest(c).WithError(err).WithField("file", fileHeader.Filename).Error("Import CSV thất bại")
			return basehdl.HandleResponse(c, nil, err)
		}

		logger.LogAction("sales.upload_csv", c, map[string]interface{}{
			"file":     fileHeader.Filename,
			"size":     fileHeader.Size,
			"inserted": result.Inserted,
			"skipped":  result.Skipped,
		})

		return basehdl.HandleResponse(c, dto.SaleUploadResponse{
			ImportID:       result.ImportID,
			FileName:       fileHeader.Filename,
			FileSize:       utility.FormatBytes(uint64(fileHeader.Size)),
			Rows:           result.Rows,
			Inserted:       result.Inserted,
			Skipped:        result.Skipped,
			Failed:         result.Failed,
			UnknownColumns: result.UnknownColumns,
			DurationMs:     result.Duration.Milliseconds(),
		}, nil)
	})
}

// parseFilters parse JSON filters; nếu lỗi thì thử URL-decode rồi parse lại.
// Không parse được thì bỏ qua filters (log warn) thay vì trả lỗi.
func (h *SaleHandler) parseFilters(c fiber.Ctx, raw string) predicate.Filters {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return predicate.Filters{}
	}
	filters, err := predicate.ParseFilters([]byte(raw))
	if err == nil {
		return filters
	}
	if decoded, decErr := url.QueryUnescape(raw); decErr == nil {
		if filters, err2 := predicate.ParseFilters([]byte(decoded)); err2 == nil {
			return filters
		}
	}
	logger.WithRequest(c).WithError(err).WithField("filters", raw).Warn("Không parse được filters, bỏ qua")
	return predicate.Filters{}
}

// parsePositive trả về 0 (dùng mặc định) khi chuỗi không phải số nguyên dương
func parsePositive(raw string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// parseSortOrder: số âm hoặc "desc" = giảm dần, số dương hoặc "asc" = tăng dần, còn lại giảm dần
func parseSortOrder(raw string) int {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch raw {
	case "asc", "ascending":
		return salesvc.SortAscending
	case "desc", "descending", "":
		return salesvc.SortDescending
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n == 0 {
		return salesvc.SortDescending
	}
	if n > 0 {
		return salesvc.SortAscending
	}
	return salesvc.SortDescending
}
