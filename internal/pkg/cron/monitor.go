package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// SubscriberCounter reports how many live streams are attached
type SubscriberCounter interface {
	TotalSubscribers() int
}

// MonitorJobs watches the store connection and live stream load.
// Failures are logged on the transition only, so a long outage is one line.
type MonitorJobs struct {
	ping    func(ctx context.Context) error
	streams SubscriberCounter
	timeout time.Duration

	storeDown atomic.Bool
}

func NewMonitorJobs(ping func(ctx context.Context) error, streams SubscriberCounter) *MonitorJobs {
	return &MonitorJobs{ping: ping, streams: streams, timeout: 5 * time.Second}
}

func (j *MonitorJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("store_ping", interval, j.PingStore)
	scheduler.AddJob("stream_stats", interval, j.ReportStreams)
}

func (j *MonitorJobs) PingStore(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	if err := j.ping(ctx); err != nil {
		if !j.storeDown.Swap(true) {
			slog.Warn("Store unreachable", "error", err)
		}
		return fmt.Errorf("store ping: %w", err)
	}

	if j.storeDown.Swap(false) {
		slog.Info("Store reachable again")
	}
	return nil
}

func (j *MonitorJobs) ReportStreams(ctx context.Context) error {
	slog.Info("Live streams", "subscribers", j.streams.TotalSubscribers())
	return nil
}
