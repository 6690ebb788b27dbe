// Package salesvc - Test MongoSaleStore với mock deployment (mtest), mỗi test một lệnh.
package salesvc

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/models"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/predicate"
	"github.com/vamsikrishnavetsa/truestate/internal/common"
)

func namespace(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestMongoSaleStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("Find returns raw documents", func(mt *mtest.T) {
		store := NewMongoSaleStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "Customer Name", Value: "Neha"}, {Key: "Tags", Value: "eco,organic"}},
			bson.D{{Key: "Customer Name", Value: "Ravi"}},
		))

		docs, err := store.Find(ctx, predicate.All(), SortSpec{Field: "Date", Order: -1}, 0, 10)
		require.NoError(mt, err)
		require.Len(mt, docs, 2)
		assert.Equal(mt, "Neha", docs[0]["Customer Name"])
		assert.Equal(mt, []string{"eco", "organic"}, models.NormalizeSale(docs[0]).Tags)
	})

	mt.Run("Find command error maps to query error", func(mt *mtest.T) {
		store := NewMongoSaleStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad sort",
		}))

		_, err := store.Find(ctx, predicate.All(), SortSpec{Field: "$bad", Order: 1}, 0, 10)
		require.Error(mt, err)
		assert.True(mt, errors.Is(err, common.ErrMongoQuery))
	})

	mt.Run("Count", func(mt *mtest.T) {
		store := NewMongoSaleStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(15)}},
		))

		n, err := store.Count(ctx, predicate.Eq("Gender", "Male"))
		require.NoError(mt, err)
		assert.Equal(mt, int64(15), n)
	})

	mt.Run("Distinct", func(mt *mtest.T) {
		store := NewMongoSaleStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "values", Value: bson.A{"North", "", "South"}},
		))

		values, err := store.Distinct(ctx, "Customer Region")
		require.NoError(mt, err)
		assert.Equal(mt, []any{"North", "", "South"}, values)
		assert.Equal(mt, []string{"North", "South"}, cleanDistinct(values))
	})

	mt.Run("DistinctTags", func(mt *mtest.T) {
		store := NewMongoSaleStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "tags", Value: bson.A{"organic", "eco"}}},
		))

		tags, err := store.DistinctTags(ctx)
		require.NoError(mt, err)
		assert.ElementsMatch(mt, []string{"eco", "organic"}, tags)
	})

	mt.Run("DistinctTags on empty collection", func(mt *mtest.T) {
		store := NewMongoSaleStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		tags, err := store.DistinctTags(ctx)
		require.NoError(mt, err)
		assert.Empty(mt, tags)
	})

	mt.Run("AgeBounds", func(mt *mtest.T) {
		store := NewMongoSaleStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch,
			bson.D{{Key: "minAge", Value: int32(18)}, {Key: "maxAge", Value: int32(64)}},
		))

		lo, hi, err := store.AgeBounds(ctx)
		require.NoError(mt, err)
		require.NotNil(mt, lo)
		require.NotNil(mt, hi)
		assert.Equal(mt, 18.0, *lo)
		assert.Equal(mt, 64.0, *hi)
	})

	mt.Run("AgeBounds without ages", func(mt *mtest.T) {
		store := NewMongoSaleStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace(mt), mtest.FirstBatch))

		lo, hi, err := store.AgeBounds(ctx)
		require.NoError(mt, err)
		assert.Nil(mt, lo)
		assert.Nil(mt, hi)
	})

	mt.Run("InsertMany", func(mt *mtest.T) {
		store := NewMongoSaleStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		n, err := store.InsertMany(ctx, []models.SaleDocument{{CustomerName: "A"}, {CustomerName: "B"}})
		require.NoError(mt, err)
		assert.Equal(mt, 2, n)
	})

	mt.Run("InsertMany partial duplicate", func(mt *mtest.T) {
		store := NewMongoSaleStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   1,
			Code:    11000,
			Message: "duplicate key error",
		}))

		n, err := store.InsertMany(ctx, []models.SaleDocument{{CustomerName: "A"}, {CustomerName: "B"}, {CustomerName: "C"}})
		require.Error(mt, err)
		assert.Equal(mt, 2, n)
		assert.True(mt, errors.Is(err, common.ErrMongoDuplicate))
	})
}
