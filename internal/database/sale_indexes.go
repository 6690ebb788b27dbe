// Package database - Index cho collection sales (các cột dùng để sort và filter).
package database

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vamsikrishnavetsa/truestate/internal/logger"
)

// SaleIndexModels trả về danh sách index cho collection sales.
// Sort luôn kèm _id làm khóa phụ nên các index sort đều có _id.
func SaleIndexModels() []mongo.IndexModel {
	sortIndex := func(name, field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName(name),
		}
	}
	filterIndex := func(name, field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetName(name),
		}
	}

	return []mongo.IndexModel{
		sortIndex("sale_date_desc", "Date"),
		sortIndex("sale_final_amount_desc", "Final Amount"),
		sortIndex("sale_quantity_desc", "Quantity"),
		{
			Keys:    bson.D{{Key: "Customer Name", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("sale_customer_name"),
		},
		filterIndex("sale_customer_region", "Customer Region"),
		filterIndex("sale_gender", "Gender"),
		filterIndex("sale_product_category", "Product Category"),
		filterIndex("sale_payment_method", "Payment Method"),
		filterIndex("sale_age", "Age"),
	}
}

// CreateSaleIndexes tạo các index cho collection sales; index đã tồn tại được bỏ qua.
func CreateSaleIndexes(ctx context.Context, coll *mongo.Collection) error {
	created := 0
	for _, model := range SaleIndexModels() {
		if _, err := coll.Indexes().CreateOne(ctx, model); err != nil {
			if isIndexExistsError(err) {
				continue
			}
			return err
		}
		created++
	}
	logger.WithModuleAndCollection("database", coll.Name()).
		WithField("created", created).
		Info("Ensured sale indexes")
	return nil
}

func isIndexExistsError(err error) bool {
	if err == nil {
		return false
	}
	var cmdErr mongo.CommandError
	if asCommandError(err, &cmdErr) && (cmdErr.Code == 85 || cmdErr.Code == 86) {
		return true // IndexOptionsConflict / IndexKeySpecsConflict
	}
	s := err.Error()
	return strings.Contains(s, "already exists") || strings.Contains(s, "duplicate")
}

func asCommandError(err error, target *mongo.CommandError) bool {
	return errors.As(err, target)
}
