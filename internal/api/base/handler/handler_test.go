// Package basehdl - Test response envelope và health check
package basehdl

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vamsikrishnavetsa/truestate/internal/common"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) error { return s.err }

func decodeBody(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestHandleResponse(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c fiber.Ctx) error {
		return HandleResponse(c, fiber.Map{"n": 1}, nil)
	})
	app.Get("/bad", func(c fiber.Ctx) error {
		return HandleResponse(c, nil, common.ErrInvalidInput)
	})
	app.Get("/wrapped", func(c fiber.Ctx) error {
		return HandleResponse(c, nil, common.Wrap(common.ErrQueryFailed, errors.New("socket closed")))
	})
	app.Get("/plain", func(c fiber.Ctx) error {
		return HandleResponse(c, nil, errors.New("secret detail"))
	})
	app.Get("/panic", func(c fiber.Ctx) error {
		return SafeHandler(c, func() error { panic("boom") })
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	body := decodeBody(t, resp.Body)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, map[string]any{"n": float64(1)}, body["data"])

	resp, err = app.Test(httptest.NewRequest("GET", "/bad", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "error", decodeBody(t, resp.Body)["status"])

	resp, err = app.Test(httptest.NewRequest("GET", "/wrapped", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	body = decodeBody(t, resp.Body)
	assert.Equal(t, common.MsgQueryFailed, body["message"])
	assert.NotContains(t, body, "details")

	resp, err = app.Test(httptest.NewRequest("GET", "/plain", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, common.MsgInternalError, decodeBody(t, resp.Body)["message"])

	resp, err = app.Test(httptest.NewRequest("GET", "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestHandleHealth(t *testing.T) {
	cases := []struct {
		name    string
		storage Pinger
		code    int
		status  string
	}{
		{"healthy", stubPinger{}, 200, "healthy"},
		{"ping failure", stubPinger{err: errors.New("down")}, 503, "degraded"},
		{"not initialized", nil, 200, "degraded"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/health", NewSystemHandler(tc.storage, "memory").HandleHealth)

			resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.code, resp.StatusCode)
			data := decodeBody(t, resp.Body)["data"].(map[string]any)
			assert.Equal(t, tc.status, data["status"])
		})
	}
}
