// Package middleware chứa error handler và các middleware HTTP dùng chung.
package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/vamsikrishnavetsa/truestate/internal/common"
	"github.com/vamsikrishnavetsa/truestate/internal/logger"
)

// JSONResponse trả về JSON response với Content-Type: application/json; charset=utf-8
func JSONResponse(c fiber.Ctx, statusCode int, data interface{}) error {
	c.Set("Content-Type", "application/json; charset=utf-8")
	return c.Status(statusCode).JSON(data)
}

// HandleErrorResponse xử lý và trả về error response cho client.
// Tách riêng khỏi basehdl để fiber ErrorHandler dùng được mà không kéo theo handler.
func HandleErrorResponse(c fiber.Ctx, err error) error {
	var customErr *common.Error
	if errors.As(err, &customErr) {
		return JSONResponse(c, customErr.StatusCode, fiber.Map{
			"code":    customErr.Code.Code,
			"message": customErr.Message,
			"status":  "error",
		})
	}
	return JSONResponse(c, common.StatusInternalServerError, fiber.Map{
		"code":    common.ErrCodeInternalServer.Code,
		"message": common.MsgInternalError,
		"status":  "error",
	})
}

// ErrorHandler là fiber ErrorHandler: lỗi *fiber.Error (404, 405, 413...) được map sang mã lỗi nội bộ
func ErrorHandler(c fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if !errors.As(err, &fiberErr) {
		logger.WithRequest(c).WithError(err).Error("Request error")
		return HandleErrorResponse(c, err)
	}

	errorCode := common.ErrCodeInternalServer.Code
	switch fiberErr.Code {
	case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusUnprocessableEntity:
		errorCode = common.ErrCodeValidationInput.Code
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		errorCode = common.ErrCodeBusinessOperation.Code
	}

	// HTTPS gửi tới server HTTP: handshake TLS bị đọc như method lạ
	if strings.Contains(fiberErr.Message, "unsupported http request method") {
		return JSONResponse(c, fiber.StatusBadRequest, fiber.Map{
			"code":    common.ErrCodeValidationInput.Code,
			"message": "Server chỉ hỗ trợ HTTP. Vui lòng sử dụng http:// thay vì https://",
			"status":  "error",
		})
	}

	if fiberErr.Code >= fiber.StatusInternalServerError {
		logger.WithRequest(c).WithField("code", fiberErr.Code).Error(fiberErr.Message)
	}
	return JSONResponse(c, fiberErr.Code, fiber.Map{
		"code":    errorCode,
		"message": fiberErr.Message,
		"status":  "error",
	})
}

// SecurityHeaders thêm các security header cơ bản
func SecurityHeaders() fiber.Handler {
	return func(c fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	}
}
