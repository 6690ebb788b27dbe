// Package bootstrap khởi tạo các thành phần dùng chung cho server và CLI:
// cấu hình, kết nối MongoDB, registry collection và SaleService.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vamsikrishnavetsa/truestate/config"
	"github.com/vamsikrishnavetsa/truestate/internal/api/sale/predicate"
	salesvc "github.com/vamsikrishnavetsa/truestate/internal/api/sale/service"
	"github.com/vamsikrishnavetsa/truestate/internal/database"
	"github.com/vamsikrishnavetsa/truestate/internal/global"
	"github.com/vamsikrishnavetsa/truestate/internal/ingest"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Store là storage mà cả truy vấn, import và health check đều dùng
type Store = salesvc.SaleStore

// App gom các thành phần đã khởi tạo
type App struct {
	Config   *config.Configuration
	Location *time.Location
	Store    Store
	Service  *salesvc.SaleService
	Importer *ingest.Importer
}

// InitGlobal khởi tạo các biến toàn cục: tên collection, validator, cấu hình
func InitGlobal() error {
	initColNames()
	global.InitValidator()
	logrus.Info("Initialized validator")

	cfg, err := config.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	global.MongoDB_ServerConfig = cfg
	global.MongoDB_ColNames.Sales = cfg.MongoDB_ColName_Sales
	logrus.Info("Initialized server config")
	return nil
}

func initColNames() {
	global.MongoDB_ColNames.Sales = "sales"
	logrus.Info("Initialized collection names")
}

// InitDatabase kết nối MongoDB, đảm bảo collection tồn tại và (tùy cấu hình) tạo index.
// Bỏ qua khi STORAGE_DRIVER=memory.
func InitDatabase(ctx context.Context, cfg *config.Configuration) error {
	if cfg.StorageDriver != DriverMongo {
		logrus.Infof("Storage driver %s, bỏ qua kết nối MongoDB", cfg.StorageDriver)
		return nil
	}

	client, err := database.GetInstance(cfg)
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	global.MongoDB_Session = client

	db := client.Database(cfg.MongoDB_DBName_Data)
	if _, err := global.RegistryDatabase.Register(cfg.MongoDB_DBName_Data, db); err != nil {
		return err
	}
	if err := database.EnsureCollections(ctx, db, global.MongoDB_ColNames.Sales); err != nil {
		return err
	}
	logrus.Info("Ensured database and collections")

	if err := InitCollections(db); err != nil {
		return err
	}

	if cfg.EnsureIndexes {
		coll, err := global.RegistryCollections.MustGet(global.MongoDB_ColNames.Sales)
		if err != nil {
			return err
		}
		if err := database.CreateSaleIndexes(ctx, coll); err != nil {
			return fmt.Errorf("failed to create sale indexes: %w", err)
		}
		logrus.Info("Ensured sale indexes")
	}
	return nil
}

// InitCollections đăng ký các collection vào registry
func InitCollections(db *mongo.Database) error {
	for _, name := range []string{global.MongoDB_ColNames.Sales} {
		registered, err := global.RegistryCollections.Register(name, db.Collection(name))
		if err != nil {
			logrus.Errorf("Failed to register collection %s: %v", name, err)
			return err
		}
		if registered {
			logrus.Infof("Collection %s registered successfully", name)
		} else {
			logrus.Warnf("Collection %s already registered", name)
		}
	}
	return nil
}

// NewStore tạo storage theo STORAGE_DRIVER
func NewStore(cfg *config.Configuration) (Store, error) {
	switch cfg.StorageDriver {
	case DriverMemory:
		return salesvc.NewMemorySaleStore(), nil
	case DriverMongo:
		store, err := salesvc.NewMongoSaleStoreFromRegistry()
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// New khởi tạo toàn bộ thành phần từ cấu hình đã nạp
func New(ctx context.Context, cfg *config.Configuration) (*App, error) {
	loc, err := time.LoadLocation(cfg.DateTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DATE_TIMEZONE %q: %w", cfg.DateTimezone, err)
	}

	if err := InitDatabase(ctx, cfg); err != nil {
		return nil, err
	}
	store, err := NewStore(cfg)
	if err != nil {
		return nil, err
	}

	builder := predicate.NewBuilder(predicate.Options{
		NumericFields: cfg.NumericFields,
		Location:      loc,
	})
	svc := salesvc.NewSaleService(store, builder, salesvc.Options{
		DefaultPageSize: int64(cfg.DefaultPageSize),
		MaxPageSize:     int64(cfg.MaxPageSize),
		QueryTimeout:    time.Duration(cfg.QueryTimeoutSeconds) * time.Second,
		FacetCacheTTL:   time.Duration(cfg.FacetCacheTTL) * time.Second,
	})
	importer := ingest.NewImporter(store, ingest.Options{
		BatchSize: cfg.UploadBatchSize,
		Location:  loc,
	})

	return &App{
		Config:   cfg,
		Location: loc,
		Store:    store,
		Service:  svc,
		Importer: importer,
	}, nil
}

// Close giải phóng cache và đóng kết nối MongoDB (nếu có)
func (a *App) Close() {
	if a.Service != nil {
		a.Service.Close()
	}
	if _, err := global.RegistryCollections.ClearAll(nil); err != nil {
		logrus.WithError(err).Warn("Failed to clear collection registry")
	}
	_ = database.CloseInstance(global.MongoDB_Session)
	global.MongoDB_Session = nil
}
