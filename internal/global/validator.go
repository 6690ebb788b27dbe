package global

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var validatorOnce sync.Once

// InitValidator khởi tạo và đăng ký các custom validator
func InitValidator() {
	validatorOnce.Do(func() {
		Validate = validator.New()

		// Lỗi validate trả về tên field theo json tag
		Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = Validate.RegisterValidation("no_xss", validateNoXSS)
		_ = Validate.RegisterValidation("field_name", validateFieldName)
	})
}

// validateNoXSS kiểm tra XSS
func validateNoXSS(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	dangerousPatterns := []string{
		"<script",
		"javascript:",
		"onerror=",
		"onload=",
		"onclick=",
		"onmouseover=",
		"eval(",
		"document.cookie",
		"document.write",
		"<iframe",
		"<object",
		"<embed",
	}

	value = strings.ToLower(value)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(value, pattern) {
			return false
		}
	}
	return true
}

// validateFieldName kiểm tra tên field dùng để sort: không bắt đầu bằng "$", không chứa ký tự NUL
func validateFieldName(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	if strings.HasPrefix(value, "$") || strings.ContainsRune(value, 0) {
		return false
	}
	return len(value) <= 128
}
