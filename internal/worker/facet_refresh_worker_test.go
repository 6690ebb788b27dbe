package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
	panic bool
}

func (r *countingRefresher) RefreshFilterOptions(ctx context.Context) (bool, error) {
	r.calls.Add(1)
	if r.panic {
		panic("boom")
	}
	return r.err == nil, r.err
}

func TestNewFacetRefreshWorker_MinInterval(t *testing.T) {
	w := NewFacetRefreshWorker(&countingRefresher{}, time.Second)
	assert.Equal(t, 10*time.Second, w.Interval())

	w = NewFacetRefreshWorker(&countingRefresher{}, time.Minute)
	assert.Equal(t, time.Minute, w.Interval())
}

func TestRunOnce_SurvivesErrorsAndPanics(t *testing.T) {
	r := &countingRefresher{err: errors.New("db down")}
	w := NewFacetRefreshWorker(r, time.Minute)
	w.RunOnce(context.Background())

	r.err = nil
	r.panic = true
	assert.NotPanics(t, func() { w.RunOnce(context.Background()) })
	assert.Equal(t, int32(2), r.calls.Load())
}

func TestStart_RefreshesImmediatelyAndStops(t *testing.T) {
	r := &countingRefresher{}
	w := NewFacetRefreshWorker(r, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
