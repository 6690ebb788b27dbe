package main

import (
	"context"
	"crypto/tls"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/vamsikrishnavetsa/truestate/config"
	"github.com/vamsikrishnavetsa/truestate/internal/logger"
	"github.com/vamsikrishnavetsa/truestate/internal/utility"
	"github.com/vamsikrishnavetsa/truestate/internal/worker"
)

// resolvePath tìm đường dẫn tương đối từ thư mục gốc (thư mục chứa config/env)
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	currentDir, err := os.Getwd()
	if err != nil {
		return path
	}
	for {
		if _, err := os.Stat(filepath.Join(currentDir, "config", "env")); err == nil {
			return filepath.Join(currentDir, path)
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return path
		}
		currentDir = parentDir
	}
}

// listen chạy server HTTP hoặc HTTPS tùy cấu hình, block đến khi server dừng
func listen(app *fiber.App, cfg *config.Configuration) error {
	address := ":" + cfg.Address
	log := logger.GetAppLogger()
	listenConfig := fiber.ListenConfig{DisableStartupMessage: true}

	if !cfg.EnableTLS || cfg.TLSCertFile == "" || cfg.TLSKeyFile == "" {
		log.WithFields(logrus.Fields{"address": address, "protocol": "HTTP"}).Info("Starting server with HTTP")
		return app.Listen(address, listenConfig)
	}

	certPath := resolvePath(cfg.TLSCertFile)
	keyPath := resolvePath(cfg.TLSKeyFile)
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return err
	}
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	tlsListener := tls.NewListener(ln, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})

	log.WithFields(logrus.Fields{"address": address, "cert": certPath, "key": keyPath}).
		Info("Starting server with HTTPS/TLS")
	return app.Listener(tlsListener, listenConfig)
}

func main() {
	initLogger()
	defer logger.Close()

	a := initApp()
	defer a.Close()

	app := InitFiberApp(a)
	log := logger.GetAppLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Giữ cache filter options luôn nóng
	if ttl := time.Duration(a.Config.FacetCacheTTL) * time.Second; ttl > 0 {
		w := worker.NewFacetRefreshWorker(a.Service, ttl/2)
		go utility.GoProtect(func() { w.Start(ctx) })
	}

	// Dừng server khi nhận SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go utility.GoProtect(func() {
		sig := <-quit
		log.Infof("Received %s, shutting down", sig)
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			log.WithError(err).Error("Server shutdown failed")
		}
	})

	if err := listen(app, a.Config); err != nil {
		log.WithError(err).Error("Server stopped with error")
		return
	}
	log.Info("Server stopped")
}
