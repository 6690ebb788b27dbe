package logger

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
)

// AuditAction mô tả một hành động làm thay đổi dữ liệu (ví dụ: import CSV)
type AuditAction struct {
	Action    string                 `json:"action"`     // Tên hành động (ví dụ: "sales_import")
	Source    string                 `json:"source"`     // http | cli
	IP        string                 `json:"ip"`         // IP address (nếu qua HTTP)
	UserAgent string                 `json:"user_agent"` // User agent (nếu qua HTTP)
	Details   map[string]interface{} `json:"details"`    // Chi tiết bổ sung
	Timestamp time.Time              `json:"timestamp"`  // Thời gian
}

// LogAction log một hành động audit phát sinh từ HTTP request
func LogAction(action string, c fiber.Ctx, details map[string]interface{}) {
	if details == nil {
		details = map[string]interface{}{}
	}
	if requestID := RequestID(c); requestID != "" {
		details["request_id"] = requestID
	}
	writeAudit(AuditAction{
		Action:    action,
		Source:    "http",
		IP:        c.IP(),
		UserAgent: c.Get("User-Agent"),
		Details:   details,
		Timestamp: time.Now(),
	})
}

// LogCLIAction log một hành động audit phát sinh từ CLI
func LogCLIAction(action string, details map[string]interface{}) {
	writeAudit(AuditAction{
		Action:    action,
		Source:    "cli",
		Details:   details,
		Timestamp: time.Now(),
	})
}

func writeAudit(a AuditAction) {
	GetAuditLogger().WithFields(logrus.Fields{
		"action":     a.Action,
		"source":     a.Source,
		"ip":         a.IP,
		"user_agent": a.UserAgent,
		"details":    a.Details,
		"timestamp":  a.Timestamp.Format(time.RFC3339),
	}).Info("Audit action")
}
