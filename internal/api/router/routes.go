// Package router chứa helper đăng ký route dùng chung và SetupRoutes cho toàn bộ API.
package router

import (
	"github.com/gofiber/fiber/v3"

	basehdl "github.com/vamsikrishnavetsa/truestate/internal/api/base/handler"
)

// Lưu ý Fiber v3: middleware truyền trực tiếp router.Get(path, mw, handler) không được gọi.
// Luôn đăng ký qua RegisterRouteWithMiddleware (group + .Use()).

// Router quản lý việc định tuyến cho API
type Router struct {
	app *fiber.App
}

// RoutePrefix chứa các prefix cơ bản cho API
type RoutePrefix struct {
	Base string // Prefix cơ bản (/api)
	V1   string // Prefix cho API version 1 (/api/v1)
}

// NewRoutePrefix tạo RoutePrefix với giá trị mặc định
func NewRoutePrefix() RoutePrefix {
	base := "/api"
	return RoutePrefix{
		Base: base,
		V1:   base + "/v1",
	}
}

// NewRouter tạo Router mới
func NewRouter(app *fiber.App) *Router {
	return &Router{
		app: app,
	}
}

// App trả về fiber app gốc
func (r *Router) App() *fiber.App {
	return r.app
}

// RegisterRouteWithMiddleware đăng ký route với middleware qua .Use() trên group của prefix.
//
//	RegisterRouteWithMiddleware(v1, "/sales", "GET", "/filters", nil, handler)
func RegisterRouteWithMiddleware(router fiber.Router, prefix string, method string, path string, middlewares []fiber.Handler, handler fiber.Handler) {
	routeGroup := router.Group(prefix)
	for _, mw := range middlewares {
		routeGroup.Use(mw)
	}

	switch method {
	case "GET":
		routeGroup.Get(path, handler)
	case "POST":
		routeGroup.Post(path, handler)
	case "PUT":
		routeGroup.Put(path, handler)
	case "DELETE":
		routeGroup.Delete(path, handler)
	}
}

// RegisterFunc là hàm đăng ký route của một domain (do domain/router export).
type RegisterFunc func(v1 fiber.Router, r *Router) error

// SetupRoutes đăng ký health check rồi lần lượt route của từng domain.
// Caller truyền Register của từng domain để tránh import cycle.
func SetupRoutes(app *fiber.App, system *basehdl.SystemHandler, regs ...RegisterFunc) error {
	prefix := NewRoutePrefix()

	app.Get("/health", system.HandleHealth)
	v1 := app.Group(prefix.V1)
	RegisterRouteWithMiddleware(v1, "/system", "GET", "/health", nil, system.HandleHealth)

	r := NewRouter(app)
	for _, reg := range regs {
		if err := reg(v1, r); err != nil {
			return err
		}
	}
	return nil
}
