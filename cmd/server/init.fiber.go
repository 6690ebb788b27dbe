package main

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"

	basehdl "github.com/vamsikrishnavetsa/truestate/internal/api/base/handler"
	"github.com/vamsikrishnavetsa/truestate/internal/api/middleware"
	apirouter "github.com/vamsikrishnavetsa/truestate/internal/api/router"
	salehdl "github.com/vamsikrishnavetsa/truestate/internal/api/sale/handler"
	salerouter "github.com/vamsikrishnavetsa/truestate/internal/api/sale/router"
	"github.com/vamsikrishnavetsa/truestate/internal/bootstrap"
	"github.com/vamsikrishnavetsa/truestate/internal/common"
	"github.com/vamsikrishnavetsa/truestate/internal/logger"
)

// skipInfra bỏ qua health check và preflight
func skipInfra(c fiber.Ctx) bool {
	return c.Path() == "/health" ||
		c.Path() == "/api/v1/system/health" ||
		c.Method() == fiber.MethodOptions
}

// InitFiberApp khởi tạo ứng dụng Fiber với các middleware cần thiết
func InitFiberApp(a *bootstrap.App) *fiber.App {
	cfg := a.Config
	bodyLimit := cfg.BodyLimitMB * 1024 * 1024
	if bodyLimit <= 0 {
		bodyLimit = 100 * 1024 * 1024
	}

	app := fiber.New(fiber.Config{
		AppName:       "TrueState Sales API",
		ServerHeader:  "TrueState Sales API",
		StrictRouting: true,
		CaseSensitive: true,
		UnescapePath:  true,

		// Upload CSV lớn
		BodyLimit:         bodyLimit,
		StreamRequestBody: true,
		ReadBufferSize:    8192,
		WriteBufferSize:   4096,

		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,

		ErrorHandler: middleware.ErrorHandler,
	})

	// 1. Request ID
	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))

	// 2. CORS: đặt trước các middleware khác để xử lý preflight
	allowOrigins := []string{"*"}
	if cfg.CORS_Origins != "*" {
		allowOrigins = allowOrigins[:0]
		for _, origin := range strings.Split(cfg.CORS_Origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowOrigins = append(allowOrigins, origin)
			}
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID", "X-Requested-With"},
		AllowCredentials: cfg.CORS_AllowCredentials,
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		MaxAge:           24 * 60 * 60,
	}))

	// 3. Security headers
	app.Use(middleware.SecurityHeaders())

	// 4. Rate limiting (chỉ bật khi enable và Max > 0)
	log := logger.GetAppLogger()
	if cfg.RateLimit_Enabled && cfg.RateLimit_Max > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimit_Max,
			Expiration: time.Duration(cfg.RateLimit_Window) * time.Second,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"code":    common.ErrCodeBusinessOperation.Code,
					"message": "Quá nhiều yêu cầu, vui lòng thử lại sau",
					"status":  "error",
				})
			},
			Next: skipInfra,
		}))
		log.Infof("Rate limiting enabled: %d requests per %d seconds", cfg.RateLimit_Max, cfg.RateLimit_Window)
	} else {
		log.Info("Rate limiting disabled")
	}

	// 5. Recover
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			logger.WithRequest(c).WithField("panic", e).Error("Panic recovered")
		},
	}))

	system := basehdl.NewSystemHandler(a.Store, cfg.StorageDriver)
	sales := salehdl.NewSaleHandler(a.Service, a.Importer)
	if err := apirouter.SetupRoutes(app, system, salerouter.Register(sales)); err != nil {
		log.Fatalf("Failed to setup routes: %v", err)
	}
	return app
}
