package salesvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	basesvc "github.com/vamsikrishnavetsa/truestate/internal/api/base/service"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/coerce"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/fieldmap"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/models"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/predicate"
	"github.com/vamsikrishnavetsa/truestate/internal/common"
	"github.com/vamsikrishnavetsa/truestate/internal/global"
)

// MongoSaleStore là SaleStore trên collection MongoDB
type MongoSaleStore struct {
	*basesvc.BaseServiceMongoImpl[models.SaleDocument]
}

// NewMongoSaleStore tạo store trên collection cho trước
func NewMongoSaleStore(coll *mongo.Collection) *MongoSaleStore {
	return &MongoSaleStore{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.SaleDocument](coll),
	}
}

// NewMongoSaleStoreFromRegistry lấy collection sales đã đăng ký lúc khởi động
func NewMongoSaleStoreFromRegistry() (*MongoSaleStore, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Sales)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Sales, common.ErrNotFound)
	}
	return NewMongoSaleStore(coll), nil
}

// Find chạy $match/$sort/$skip/$limit với allowDiskUse để sort lớn có thể tràn ra đĩa
func (s *MongoSaleStore) Find(ctx context.Context, p predicate.Predicate, sort SortSpec, skip, limit int64) ([]map[string]any, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: predicate.ToBSON(p)}},
		{{Key: "$sort", Value: sortDoc(sort)}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
	}

	docs, err := s.Aggregate(ctx, pipeline, true)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, len(docs))
	for i, d := range docs {
		out[i] = d
	}
	return out, nil
}

// sortDoc thêm _id làm khóa phụ để phân trang ổn định khi khóa chính trùng nhau
func sortDoc(sort SortSpec) bson.D {
	d := bson.D{{Key: sort.Field, Value: sort.Order}}
	if sort.Field != "_id" {
		d = append(d, bson.E{Key: "_id", Value: sort.Order})
	}
	return d
}

// Count đếm document khớp predicate
func (s *MongoSaleStore) Count(ctx context.Context, p predicate.Predicate) (int64, error) {
	return s.CountDocuments(ctx, predicate.ToBSON(p))
}

// Distinct lấy giá trị duy nhất của một cột
func (s *MongoSaleStore) Distinct(ctx context.Context, field string) ([]any, error) {
	return s.BaseServiceMongoImpl.Distinct(ctx, field, bson.D{})
}

// DistinctTags tách chuỗi tags của từng document rồi gộp thành tập
func (s *MongoSaleStore) DistinctTags(ctx context.Context) ([]string, error) {
	tagsField := "$" + fieldmap.ToPhysical(fieldmap.Tags)
	pipeline := mongo.Pipeline{
		{{Key: "$project", Value: bson.M{"tagsStr": bson.M{"$ifNull": bson.A{tagsField, ""}}}}},
		{{Key: "$project", Value: bson.M{"tagsArr": bson.M{"$split": bson.A{"$tagsStr", fieldmap.TagDelimiter}}}}},
		{{Key: "$unwind", Value: bson.M{"path": "$tagsArr", "preserveNullAndEmptyArrays": false}}},
		{{Key: "$project", Value: bson.M{"tag": bson.M{"$trim": bson.M{"input": "$tagsArr"}}}}},
		{{Key: "$match", Value: bson.M{"tag": bson.M{"$ne": ""}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "tags": bson.M{"$addToSet": "$tag"}}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "tags": 1}}},
	}

	docs, err := s.Aggregate(ctx, pipeline, true)
	if err != nil {
		return nil, err
	}
	tags := make([]string, 0)
	if len(docs) == 0 {
		return tags, nil
	}
	raw, _ := docs[0]["tags"].(bson.A)
	for _, t := range raw {
		if str, ok := t.(string); ok && str != "" {
			tags = append(tags, str)
		}
	}
	return tags, nil
}

// AgeBounds tính min/max tuổi trên các document có tuổi
func (s *MongoSaleStore) AgeBounds(ctx context.Context) (*float64, *float64, error) {
	ageField := fieldmap.ToPhysical(fieldmap.Age)
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{ageField: bson.M{"$exists": true, "$ne": nil}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "minAge": bson.M{"$min": "$" + ageField}, "maxAge": bson.M{"$max": "$" + ageField}}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "minAge": 1, "maxAge": 1}}},
	}

	docs, err := s.Aggregate(ctx, pipeline, false)
	if err != nil {
		return nil, nil, err
	}
	if len(docs) == 0 {
		return nil, nil, nil
	}
	return numberPtr(docs[0]["minAge"]), numberPtr(docs[0]["maxAge"]), nil
}

// Ping kiểm tra kết nối tới MongoDB
func (s *MongoSaleStore) Ping(ctx context.Context) error {
	if err := s.Collection().Database().Client().Ping(ctx, nil); err != nil {
		return common.ConvertMongoError(err)
	}
	return nil
}

func numberPtr(v any) *float64 {
	n, ok := coerce.ParseNumber(v)
	if !ok {
		return nil
	}
	return &n
}
