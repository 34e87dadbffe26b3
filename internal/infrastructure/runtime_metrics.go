package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeMetrics records Go runtime gauges
type RuntimeMetrics struct {
	goroutines metric.Int64Gauge
	heapAlloc  metric.Int64Gauge
	heapSys    metric.Int64Gauge
	gcCount    metric.Int64Gauge
	gcPause    metric.Float64Histogram
	uptime     metric.Float64Gauge
	lastNumGC  uint32
	startTime  time.Time
}

// RuntimeStats is one runtime snapshot
type RuntimeStats struct {
	Goroutines  int64         `json:"goroutines"`
	HeapAlloc   uint64        `json:"heap_alloc_bytes"`
	HeapSys     uint64        `json:"heap_sys_bytes"`
	NumGC       uint32        `json:"gc_count"`
	LastGCPause time.Duration `json:"last_gc_pause_ns"`
	Uptime      time.Duration `json:"uptime_ns"`
}

// NewRuntimeMetrics registers the runtime gauges on meter
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	rm := &RuntimeMetrics{startTime: time.Now()}
	var err error

	if rm.goroutines, err = meter.Int64Gauge("runtime_goroutines",
		metric.WithDescription("Number of active goroutines")); err != nil {
		return nil, err
	}
	if rm.heapAlloc, err = meter.Int64Gauge("runtime_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By")); err != nil {
		return nil, err
	}
	if rm.heapSys, err = meter.Int64Gauge("runtime_heap_sys_bytes",
		metric.WithDescription("Heap memory obtained from the OS"),
		metric.WithUnit("By")); err != nil {
		return nil, err
	}
	if rm.gcCount, err = meter.Int64Gauge("runtime_gc_count",
		metric.WithDescription("Completed garbage collection cycles")); err != nil {
		return nil, err
	}
	if rm.gcPause, err = meter.Float64Histogram("runtime_gc_pause_seconds",
		metric.WithDescription("Garbage collection pause duration"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if rm.uptime, err = meter.Float64Gauge("process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}

	return rm, nil
}

// Collect takes a snapshot and records it
func (rm *RuntimeMetrics) Collect(ctx context.Context) RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := RuntimeStats{
		Goroutines: int64(runtime.NumGoroutine()),
		HeapAlloc:  mem.HeapAlloc,
		HeapSys:    mem.HeapSys,
		NumGC:      mem.NumGC,
		Uptime:     time.Since(rm.startTime),
	}
	if mem.NumGC > 0 {
		stats.LastGCPause = time.Duration(mem.PauseNs[(mem.NumGC+255)%256])
	}

	rm.goroutines.Record(ctx, stats.Goroutines)
	rm.heapAlloc.Record(ctx, int64(stats.HeapAlloc))
	rm.heapSys.Record(ctx, int64(stats.HeapSys))
	rm.gcCount.Record(ctx, int64(stats.NumGC))
	rm.uptime.Record(ctx, stats.Uptime.Seconds())
	if stats.NumGC != rm.lastNumGC {
		rm.gcPause.Record(ctx, stats.LastGCPause.Seconds())
		rm.lastNumGC = stats.NumGC
	}

	return stats
}

// RuntimeCollector samples RuntimeMetrics on an interval until stopped
type RuntimeCollector struct {
	metrics  *RuntimeMetrics
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRuntimeCollector creates a collector sampling every interval
func NewRuntimeCollector(meter metric.Meter, interval time.Duration) (*RuntimeCollector, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("collector interval must be positive, got %s", interval)
	}
	metrics, err := NewRuntimeMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime metrics: %w", err)
	}

	return &RuntimeCollector{
		metrics:  metrics,
		interval: interval,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start samples until ctx is done or Stop is called. It blocks.
func (c *RuntimeCollector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.metrics.Collect(ctx)
	for {
		select {
		case <-ticker.C:
			c.metrics.Collect(ctx)
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends a running Start; it is safe to call more than once
func (c *RuntimeCollector) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}
