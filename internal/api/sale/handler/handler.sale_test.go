// Package salehdl_test - Test API sales qua fiber app.Test
package salehdl_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	basehdl "github.com/vamsikrishnavetsa/truestate/internal/api/base/handler"
	"github.com/vamsikrishnavetsa/truestate/internal/api/middleware"
	apirouter "github.com/vamsikrishnavetsa/truestate/internal/api/router"
	salehdl "github.com/vamsikrishnavetsa/truestate/internal/api/sale/handler"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/predicate"
	salerouter "github.com/vamsikrishnavetsa/truestate/internal/api/sale/router"
	salesvc "github.com/vamsikrishnavetsa/truestate/internal/api/sale/service"
	"github.com/vamsikrishnavetsa/truestate/internal/common"
	"github.com/vamsikrishnavetsa/truestate/internal/ingest"
)

type envelope struct {
	Code    any             `json:"code"`
	Message string          `json:"message"`
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
}

type pageData struct {
	Results  []map[string]any `json:"results"`
	Total    int64            `json:"total"`
	Page     int64            `json:"page"`
	PageSize int64            `json:"pageSize"`
}

func seedStore() *salesvc.MemorySaleStore {
	store := salesvc.NewMemorySaleStore()
	regions := []string{"North", "South", "East"}
	for i := 0; i < 15; i++ {
		store.InsertRaw(map[string]any{
			"Transaction ID":  fmt.Sprintf("T-%02d", i),
			"Customer Name":   fmt.Sprintf("Customer %02d", i),
			"Customer Region": regions[i%3],
			"Age":             int32(20 + i*2),
			"Final Amount":    float64(100 * (i + 1)),
			"Date":            time.Date(2023, 1, 1+i, 10, 0, 0, 0, time.UTC),
			"Tags":            "eco,organic",
		})
	}
	return store
}

func newApp(t *testing.T, store salesvc.SaleStore, inserter ingest.Inserter) *fiber.App {
	t.Helper()
	svc := salesvc.NewSaleService(store, predicate.NewBuilder(predicate.Options{}), salesvc.Options{FacetCacheTTL: time.Minute})
	t.Cleanup(svc.Close)
	h := salehdl.NewSaleHandler(svc, ingest.NewImporter(inserter, ingest.Options{BatchSize: 2}))

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	require.NoError(t, apirouter.SetupRoutes(app, basehdl.NewSystemHandler(store, "memory"), salerouter.Register(h)))
	return app
}

func doGet(t *testing.T, app *fiber.App, target string) (int, envelope) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func decodePage(t *testing.T, env envelope) pageData {
	t.Helper()
	var page pageData
	require.NoError(t, json.Unmarshal(env.Data, &page))
	return page
}

func salesURL(values url.Values) string {
	return "/api/v1/sales?" + values.Encode()
}

func TestQuerySales_Pagination(t *testing.T) {
	store := seedStore()
	app := newApp(t, store, store)

	code, env := doGet(t, app, salesURL(url.Values{"page": {"2"}, "pageSize": {"10"}}))
	assert.Equal(t, 200, code)
	assert.Equal(t, "success", env.Status)
	page := decodePage(t, env)
	assert.Equal(t, int64(15), page.Total)
	assert.Len(t, page.Results, 5)
	assert.Equal(t, int64(2), page.Page)
}

func TestQuerySales_InvalidPagingUsesDefaults(t *testing.T) {
	store := seedStore()
	app := newApp(t, store, store)

	code, env := doGet(t, app, salesURL(url.Values{"page": {"abc"}, "pageSize": {"-5"}}))
	assert.Equal(t, 200, code)
	page := decodePage(t, env)
	assert.Equal(t, int64(1), page.Page)
	assert.Equal(t, int64(10), page.PageSize)
	assert.Len(t, page.Results, 10)
}

func TestQuerySales_FiltersAndSort(t *testing.T) {
	store := seedStore()
	app := newApp(t, store, store)

	code, env := doGet(t, app, salesURL(url.Values{
		"filters":   {`{"customerRegion":["North"],"ageRange":[25,40]}`},
		"sortBy":    {"Final Amount"},
		"sortOrder": {"-1"},
		"pageSize":  {"5"},
	}))
	require.Equal(t, 200, code)
	page := decodePage(t, env)
	require.NotEmpty(t, page.Results)

	prev := -1.0
	for _, r := range page.Results {
		assert.Equal(t, "North", r["customerRegion"])
		age := r["age"].(float64)
		assert.GreaterOrEqual(t, age, 25.0)
		assert.LessOrEqual(t, age, 40.0)
		amount := r["finalAmount"].(float64)
		if prev >= 0 {
			assert.GreaterOrEqual(t, prev, amount)
		}
		prev = amount
		assert.Equal(t, []any{"eco", "organic"}, r["tags"])
	}
}

func TestQuerySales_DoubleEncodedFilters(t *testing.T) {
	store := seedStore()
	app := newApp(t, store, store)

	once := url.QueryEscape(`{"customerRegion":"South"}`)
	code, env := doGet(t, app, salesURL(url.Values{"filters": {once}}))
	require.Equal(t, 200, code)
	page := decodePage(t, env)
	assert.Equal(t, int64(5), page.Total)
}

func TestQuerySales_MalformedFiltersIgnored(t *testing.T) {
	store := seedStore()
	app := newApp(t, store, store)

	code, env := doGet(t, app, salesURL(url.Values{"filters": {"{not json"}}))
	require.Equal(t, 200, code)
	assert.Equal(t, int64(15), decodePage(t, env).Total)
}

func TestQuerySales_NoMatchIsEmptyPage(t *testing.T) {
	store := seedStore()
	app := newApp(t, store, store)

	code, env := doGet(t, app, salesURL(url.Values{"search": {"nobody"}}))
	require.Equal(t, 200, code)
	assert.Contains(t, string(env.Data), `"results":[]`)
}

func TestQuerySales_RejectsOperatorSortField(t *testing.T) {
	store := seedStore()
	app := newApp(t, store, store)

	code, env := doGet(t, app, salesURL(url.Values{"sortBy": {"$where"}}))
	assert.Equal(t, 400, code)
	assert.Equal(t, "error", env.Status)
}

// brokenStore lỗi ở mọi thao tác đếm
type brokenStore struct {
	*salesvc.MemorySaleStore
}

func (b brokenStore) Count(ctx context.Context, p predicate.Predicate) (int64, error) {
	return 0, common.Wrap(common.ErrMongoNetwork, errors.New("connection reset"))
}

func TestQuerySales_StorageFailure(t *testing.T) {
	store := brokenStore{MemorySaleStore: seedStore()}
	app := newApp(t, store, store)

	code, env := doGet(t, app, "/api/v1/sales")
	assert.Equal(t, 500, code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, common.MsgQueryFailed, env.Message)
}

func TestGetFilterOptions(t *testing.T) {
	store := seedStore()
	app := newApp(t, store, store)

	code, env := doGet(t, app, "/api/v1/sales/filters")
	require.Equal(t, 200, code)

	var opts struct {
		CustomerRegion []string `json:"customerRegion"`
		Tags           []string `json:"tags"`
		AgeRange       struct {
			Min *float64 `json:"min"`
			Max *float64 `json:"max"`
		} `json:"ageRange"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &opts))
	assert.Equal(t, []string{"East", "North", "South"}, opts.CustomerRegion)
	assert.Equal(t, []string{"eco", "organic"}, opts.Tags)
	require.NotNil(t, opts.AgeRange.Min)
	assert.Equal(t, 20.0, *opts.AgeRange.Min)
}

func multipartCSV(t *testing.T, field, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile(field, "sales.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestUploadCSV_InsertsAndRefreshesFacets(t *testing.T) {
	store := seedStore()
	app := newApp(t, store, store)

	// làm nóng cache filter options
	_, _ = doGet(t, app, "/api/v1/sales/filters")

	body, contentType := multipartCSV(t, "file",
		"Customer Name,Customer Region,Tags\nNeha,West,vegan|eco\nRavi,West,\n")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales/upload-csv", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	var result struct {
		Inserted int    `json:"inserted"`
		FileName string `json:"fileName"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, "sales.csv", result.FileName)

	_, env = doGet(t, app, "/api/v1/sales/filters")
	assert.Contains(t, string(env.Data), "West")
	assert.Contains(t, string(env.Data), "vegan")
}

func TestUploadCSV_MissingFile(t *testing.T) {
	store := seedStore()
	app := newApp(t, store, store)

	body, contentType := multipartCSV(t, "other", "Customer Name\nA\n")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sales/upload-csv", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestHealthAndUnknownRoute(t *testing.T) {
	store := seedStore()
	app := newApp(t, store, store)

	code, env := doGet(t, app, "/health")
	assert.Equal(t, 200, code)
	assert.Equal(t, "success", env.Status)

	code, env = doGet(t, app, "/api/v1/system/health")
	assert.Equal(t, 200, code)

	code, env = doGet(t, app, "/api/v1/nope")
	assert.Equal(t, 404, code)
	assert.Equal(t, "error", env.Status)
}
