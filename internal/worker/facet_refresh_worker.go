// Package worker chứa các background worker chạy cùng server.
package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vamsikrishnavetsa/truestate/internal/logger"
)

// FacetRefresher tính lại filter options đang cache
type FacetRefresher interface {
	RefreshFilterOptions(ctx context.Context) (bool, error)
}

// FacetRefreshWorker làm mới cache filter options định kỳ để request không phải chờ quét collection
type FacetRefreshWorker struct {
	refresher FacetRefresher
	interval  time.Duration
}

// NewFacetRefreshWorker tạo worker; interval dưới 10 giây được nâng lên 10 giây
func NewFacetRefreshWorker(refresher FacetRefresher, interval time.Duration) *FacetRefreshWorker {
	if interval < 10*time.Second {
		interval = 10 * time.Second
	}
	return &FacetRefreshWorker{
		refresher: refresher,
		interval:  interval,
	}
}

// Interval trả về chu kỳ chạy
func (w *FacetRefreshWorker) Interval() time.Duration {
	return w.interval
}

// Start làm mới ngay một lần rồi chạy theo chu kỳ đến khi ctx bị hủy
func (w *FacetRefreshWorker) Start(ctx context.Context) {
	log := logger.GetAppLogger()
	log.WithField("interval", w.interval.String()).Info("[FACET_REFRESH] Starting facet refresh worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info("[FACET_REFRESH] Facet refresh worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce chạy một lượt, panic được bắt lại để lượt sau vẫn chạy
func (w *FacetRefreshWorker) RunOnce(ctx context.Context) {
	log := logger.GetAppLogger()
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("[FACET_REFRESH] Panic khi làm mới filter options, sẽ tiếp tục ở lần chạy tiếp theo")
		}
	}()

	start := time.Now()
	refreshed, err := w.refresher.RefreshFilterOptions(ctx)
	if err != nil {
		log.WithError(err).Error("[FACET_REFRESH] Failed to refresh filter options")
		return
	}
	if refreshed {
		logger.GetPerformanceLogger().WithFields(logrus.Fields{
			"module":   "facet_refresh",
			"duration": time.Since(start).String(),
		}).Debug("Filter options refreshed")
	}
}
