// package basesvc cung cấp các service cơ bản cho việc tương tác với MongoDB
package basesvc

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vamsikrishnavetsa/truestate/internal/common"
)

// BaseServiceMongo định nghĩa interface chứa các phương thức cơ bản cho việc tương tác với MongoDB.
// Collection sales chỉ đọc (ngoài import hàng loạt) nên không có nhóm Update/Delete.
type BaseServiceMongo[Model any] interface {
	InsertMany(ctx context.Context, data []Model) (int, error)
	Aggregate(ctx context.Context, pipeline mongo.Pipeline, allowDiskUse bool) ([]bson.M, error)
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
	Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error)
}

// BaseServiceMongoImpl định nghĩa struct triển khai các phương thức cơ bản cho service
type BaseServiceMongoImpl[T any] struct {
	collection *mongo.Collection
}

// NewBaseServiceMongo tạo mới một BaseServiceMongoImpl
func NewBaseServiceMongo[T any](collection *mongo.Collection) *BaseServiceMongoImpl[T] {
	return &BaseServiceMongoImpl[T]{
		collection: collection,
	}
}

// Collection trả về collection MongoDB
func (s *BaseServiceMongoImpl[T]) Collection() *mongo.Collection {
	return s.collection
}

// InsertMany ghi nhiều document (unordered: một document lỗi không chặn các document còn lại).
// Trả về số document đã ghi, kể cả khi có lỗi một phần.
func (s *BaseServiceMongoImpl[T]) InsertMany(ctx context.Context, data []T) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}

	documents := make([]interface{}, 0, len(data))
	for _, item := range data {
		documents = append(documents, item)
	}

	result, err := s.collection.InsertMany(ctx, documents, options.InsertMany().SetOrdered(false))
	if err != nil {
		inserted := 0
		var bulkErr mongo.BulkWriteException
		if errors.As(err, &bulkErr) {
			inserted = len(data) - len(bulkErr.WriteErrors)
		}
		return inserted, common.ConvertMongoError(err)
	}
	return len(result.InsertedIDs), nil
}

// Aggregate chạy pipeline và trả về document dạng bson.M
func (s *BaseServiceMongoImpl[T]) Aggregate(ctx context.Context, pipeline mongo.Pipeline, allowDiskUse bool) ([]bson.M, error) {
	opts := options.Aggregate()
	if allowDiskUse {
		opts.SetAllowDiskUse(true)
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline, opts)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}
	defer cursor.Close(ctx)

	results := make([]bson.M, 0)
	if err := cursor.All(ctx, &results); err != nil {
		return nil, common.ConvertMongoError(err)
	}
	return results, nil
}

// CountDocuments đếm số lượng document
func (s *BaseServiceMongoImpl[T]) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	if filter == nil {
		filter = bson.D{}
	}

	count, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, common.ConvertMongoError(err)
	}

	return count, nil
}

// Distinct lấy danh sách các giá trị duy nhất
func (s *BaseServiceMongoImpl[T]) Distinct(ctx context.Context, fieldName string, filter interface{}) ([]interface{}, error) {
	if filter == nil {
		filter = bson.D{}
	}

	values, err := s.collection.Distinct(ctx, fieldName, filter)
	if err != nil {
		return nil, common.ConvertMongoError(err)
	}

	return values, nil
}
