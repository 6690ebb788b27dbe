// Package salesvc - Test QuerySales / GetFilterOptions trên MemorySaleStore.
package salesvc

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/models"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/predicate"
	"github.com/vamsikrishnavetsa/truestate/internal/common"
)

func seedStore(t *testing.T) *MemorySaleStore {
	t.Helper()
	store := NewMemorySaleStore()
	regions := []string{"North", "South", "East"}
	for i := 0; i < 15; i++ {
		store.InsertRaw(map[string]any{
			"Transaction ID":  fmt.Sprintf("T-%02d", i),
			"Customer Name":   fmt.Sprintf("Customer %02d", i),
			"Customer Region": regions[i%3],
			"Gender":          []string{"Male", "Female"}[i%2],
			"Age":             int32(20 + i*2),
			"Final Amount":    float64(100 * (i + 1)),
			"Date":            time.Date(2023, 1, 1+i, 10, 0, 0, 0, time.UTC),
			"Tags":            "eco, organic",
		})
	}
	return store
}

func newService(store SaleStore) *SaleService {
	return NewSaleService(store, predicate.NewBuilder(predicate.Options{}), Options{})
}

func TestQuerySales_PaginationTotalIndependentOfPage(t *testing.T) {
	svc := newService(seedStore(t))

	res, err := svc.QuerySales(context.Background(), QueryInput{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, res.Results, 5)
	assert.Equal(t, int64(15), res.Total)
	assert.Equal(t, int64(2), res.Page)
	assert.Equal(t, int64(10), res.PageSize)

	res, err = svc.QuerySales(context.Background(), QueryInput{Page: 9, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Results)
	assert.NotNil(t, res.Results)
	assert.Equal(t, int64(15), res.Total)
}

func TestQuerySales_DefaultsForInvalidPaging(t *testing.T) {
	svc := NewSaleService(seedStore(t), nil, Options{MaxPageSize: 12})

	res, err := svc.QuerySales(context.Background(), QueryInput{Page: -3, PageSize: 0})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Page)
	assert.Equal(t, int64(10), res.PageSize)
	assert.Len(t, res.Results, 10)

	res, err = svc.QuerySales(context.Background(), QueryInput{PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, int64(12), res.PageSize)
}

func TestQuerySales_DefaultSortIsDateDescending(t *testing.T) {
	svc := newService(seedStore(t))
	res, err := svc.QuerySales(context.Background(), QueryInput{PageSize: 3})
	require.NoError(t, err)
	require.Len(t, res.Results, 3)
	assert.Equal(t, "T-14", res.Results[0].TransactionID)
	assert.Equal(t, "T-13", res.Results[1].TransactionID)
}

func TestQuerySales_Scenario(t *testing.T) {
	svc := newService(seedStore(t))
	filters, err := predicate.ParseFilters([]byte(`{"customerRegion": ["North"], "ageRange": [25, 40]}`))
	require.NoError(t, err)

	res, err := svc.QuerySales(context.Background(), QueryInput{
		Page:      1,
		PageSize:  5,
		SortBy:    "Final Amount",
		SortOrder: -1,
		Filters:   filters,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Results)
	assert.LessOrEqual(t, len(res.Results), 5)

	var prev *float64
	for _, s := range res.Results {
		assert.Equal(t, "North", s.CustomerRegion)
		require.NotNil(t, s.Age)
		assert.GreaterOrEqual(t, *s.Age, int64(25))
		assert.LessOrEqual(t, *s.Age, int64(40))
		require.NotNil(t, s.FinalAmount)
		if prev != nil {
			assert.GreaterOrEqual(t, *prev, *s.FinalAmount)
		}
		prev = s.FinalAmount
	}
}

func TestQuerySales_DateRangeIncludesEndDay(t *testing.T) {
	svc := newService(seedStore(t))
	filters, err := predicate.ParseFilters([]byte(`{"dateRange": ["2023-01-02", "2023-01-04"]}`))
	require.NoError(t, err)

	res, err := svc.QuerySales(context.Background(), QueryInput{Filters: filters, SortBy: "date", SortOrder: 1})
	require.NoError(t, err)
	require.Equal(t, int64(3), res.Total)
	assert.Equal(t, "T-01", res.Results[0].TransactionID)
	assert.Equal(t, "T-03", res.Results[2].TransactionID)
}

func TestQuerySales_TagsRoundTrip(t *testing.T) {
	store := NewMemorySaleStore()
	store.InsertRaw(map[string]any{"Customer Name": "A", "Tags": "red, blue , green"})
	svc := newService(store)

	res, err := svc.QuerySales(context.Background(), QueryInput{})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, []string{"red", "blue", "green"}, res.Results[0].Tags)
}

func TestQuerySales_SearchIsLiteral(t *testing.T) {
	store := NewMemorySaleStore()
	store.InsertRaw(
		map[string]any{"Customer Name": "a.b*c shop"},
		map[string]any{"Customer Name": "aXbbbc"},
	)
	svc := newService(store)

	res, err := svc.QuerySales(context.Background(), QueryInput{Search: "a.b*c"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Total)
}

func TestQuerySales_NoMatchIsNotAnError(t *testing.T) {
	svc := newService(seedStore(t))
	res, err := svc.QuerySales(context.Background(), QueryInput{Search: "nobody"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Total)
	assert.Empty(t, res.Results)
}

func TestResolveSort(t *testing.T) {
	assert.Equal(t, SortSpec{Field: "Date", Order: -1}, ResolveSort("", 0))
	assert.Equal(t, SortSpec{Field: "Quantity", Order: 1}, ResolveSort("quantity", 1))
	assert.Equal(t, SortSpec{Field: "Customer Name", Order: 1}, ResolveSort("customerName", 5))
	assert.Equal(t, SortSpec{Field: "Final Amount", Order: -1}, ResolveSort("Final Amount", -1))
	assert.Equal(t, SortSpec{Field: "Store ID", Order: -1}, ResolveSort("Store ID", -1))
}

// failingStore trả lỗi ở mọi thao tác đọc
type failingStore struct {
	*MemorySaleStore
	err error
}

func (f failingStore) Count(ctx context.Context, p predicate.Predicate) (int64, error) {
	return 0, f.err
}

func (f failingStore) DistinctTags(ctx context.Context) ([]string, error) {
	return nil, f.err
}

func TestQuerySales_StorageFailure(t *testing.T) {
	svc := newService(failingStore{MemorySaleStore: seedStore(t), err: common.ErrMongoTimeout})

	_, err := svc.QuerySales(context.Background(), QueryInput{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrQueryFailed))
	assert.True(t, errors.Is(err, common.ErrMongoTimeout))
	assert.Equal(t, common.StatusInternalServerError, common.StatusCodeOf(err))
}

func TestGetFilterOptions_SortedUniqueNonEmpty(t *testing.T) {
	store := seedStore(t)
	store.InsertRaw(
		map[string]any{"Customer Region": "", "Gender": nil, "Tags": " , Bio,eco"},
		map[string]any{"Payment Method": "UPI", "Product Category": "Beauty"},
		map[string]any{"Payment Method": "Cash", "Product Category": "Beauty"},
	)
	svc := newService(store)

	opts, err := svc.GetFilterOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"East", "North", "South"}, opts.CustomerRegion)
	assert.Equal(t, []string{"Female", "Male"}, opts.Gender)
	assert.Equal(t, []string{"Beauty"}, opts.ProductCategory)
	assert.Equal(t, []string{"Cash", "UPI"}, opts.PaymentMethod)
	assert.Equal(t, []string{"Bio", "eco", "organic"}, opts.Tags)
	require.NotNil(t, opts.AgeRange.Min)
	require.NotNil(t, opts.AgeRange.Max)
	assert.Equal(t, 20.0, *opts.AgeRange.Min)
	assert.Equal(t, 48.0, *opts.AgeRange.Max)
}

func TestGetFilterOptions_EmptyCollection(t *testing.T) {
	svc := newService(NewMemorySaleStore())
	opts, err := svc.GetFilterOptions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, opts.Tags)
	assert.NotNil(t, opts.Tags)
	assert.Nil(t, opts.AgeRange.Min)
	assert.Nil(t, opts.AgeRange.Max)
}

func TestGetFilterOptions_StorageFailure(t *testing.T) {
	svc := newService(failingStore{MemorySaleStore: seedStore(t), err: errors.New("boom")})
	_, err := svc.GetFilterOptions(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrFilterOptionsFailed))
}

// countingStore đếm số lần quét tags
type countingStore struct {
	*MemorySaleStore
	scans atomic.Int32
}

func (c *countingStore) DistinctTags(ctx context.Context) ([]string, error) {
	c.scans.Add(1)
	return c.MemorySaleStore.DistinctTags(ctx)
}

func TestGetFilterOptions_CacheAndInvalidate(t *testing.T) {
	store := &countingStore{MemorySaleStore: seedStore(t)}
	svc := NewSaleService(store, nil, Options{FacetCacheTTL: time.Minute})
	defer svc.Close()

	_, err := svc.GetFilterOptions(context.Background())
	require.NoError(t, err)
	_, err = svc.GetFilterOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), store.scans.Load())

	_, err = store.InsertMany(context.Background(), []models.SaleDocument{{CustomerName: "New", Tags: "vegan"}})
	require.NoError(t, err)
	svc.InvalidateFilterOptions()

	opts, err := svc.GetFilterOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), store.scans.Load())
	assert.Contains(t, opts.Tags, "vegan")
}

func TestRefreshFilterOptions(t *testing.T) {
	store := &countingStore{MemorySaleStore: seedStore(t)}

	uncached := newService(store)
	refreshed, err := uncached.RefreshFilterOptions(context.Background())
	require.NoError(t, err)
	assert.False(t, refreshed)
	assert.Equal(t, int32(0), store.scans.Load())

	svc := NewSaleService(store, nil, Options{FacetCacheTTL: time.Minute})
	defer svc.Close()

	refreshed, err = svc.RefreshFilterOptions(context.Background())
	require.NoError(t, err)
	assert.True(t, refreshed)

	_, err = svc.GetFilterOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), store.scans.Load())
}
