package telemetry

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

type perfGauges struct {
	cpu         metric.Float64Gauge
	allocated   metric.Int64Gauge
	liveObjects metric.Int64Gauge
	goroutines  metric.Int64Gauge
}

func newPerfGauges(meter metric.Meter) (perfGauges, error) {
	var g perfGauges
	var err error
	g.cpu, err = meter.Float64Gauge("cpu_usage", metric.WithUnit("%"))
	if err != nil {
		return g, err
	}
	g.allocated, err = meter.Int64Gauge("allocated_mb", metric.WithUnit("MiBy"))
	if err != nil {
		return g, err
	}
	g.liveObjects, err = meter.Int64Gauge("live_objects")
	if err != nil {
		return g, err
	}
	g.goroutines, err = meter.Int64Gauge("goroutine_count")
	return g, err
}

// record takes one sample. cpu usage is measured since the previous sample.
func (g perfGauges) record(ctx context.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	g.allocated.Record(ctx, int64(mem.Alloc/1024/1024))
	g.liveObjects.Record(ctx, int64(mem.Mallocs-mem.Frees))
	g.goroutines.Record(ctx, int64(runtime.NumGoroutine()))

	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		slog.Warn("failed to read cpu usage", "err", err)
		return
	}
	if len(percents) > 0 {
		g.cpu.Record(ctx, percents[0])
	}
}

func startPerfStats(ctx context.Context, meter metric.Meter, interval time.Duration) error {
	gauges, err := newPerfGauges(meter)
	if err != nil {
		return err
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				gauges.record(ctx)
			}
		}
	}()
	return nil
}

// InstrumentPerfStats samples process cpu, memory and goroutine gauges into the global
// meter provider every interval until ctx is done.
func InstrumentPerfStats(ctx context.Context, interval time.Duration) error {
	return startPerfStats(ctx, otel.Meter("asthma-pipeline/perf_stats"), interval)
}
