package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vamsikrishnavetsa/truestate/internal/bootstrap"
	"github.com/vamsikrishnavetsa/truestate/internal/global"
	"github.com/vamsikrishnavetsa/truestate/internal/logger"
)

// initLogger khởi tạo logger cho toàn bộ ứng dụng, cấu hình đọc từ biến môi trường LOG_*
func initLogger() {
	if err := logger.Init(nil); err != nil {
		logrus.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.GetAppLogger().Info("Logger system initialized successfully")
}

// initApp nạp cấu hình, kết nối storage và tạo các service
func initApp() *bootstrap.App {
	if err := bootstrap.InitGlobal(); err != nil {
		logrus.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	app, err := bootstrap.New(ctx, global.MongoDB_ServerConfig)
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}
	logrus.Infof("Initialized sales service (storage: %s)", app.Config.StorageDriver)
	return app
}
