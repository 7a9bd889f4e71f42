package telemetry

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"go.opentelemetry.io/otel"
)

// PerfStats is a single sample of the process' resource usage.
type PerfStats struct {
	CpuPercent   float64
	AllocatedMb  int64
	LiveObjects  int64
	Goroutines   int64
	CpuAvailable bool
}

// ReadPerfStats samples cpu usage over the given window along with the
// current memory and goroutine counts. A cpu read failure only clears
// CpuAvailable.
func ReadPerfStats(window time.Duration) PerfStats {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	stats := PerfStats{
		AllocatedMb: int64(memStats.Alloc / 1_000_000),
		LiveObjects: int64(memStats.Mallocs) - int64(memStats.Frees),
		Goroutines:  int64(runtime.NumGoroutine()),
	}
	usage, err := cpu.Percent(window, false)
	if err == nil && len(usage) > 0 {
		stats.CpuPercent = usage[0]
		stats.CpuAvailable = true
	}
	return stats
}

// InstrumentPerfStats records PerfStats to the global meter provider every
// interval until ctx is done. Collection runs over many tags can take hours,
// this is what shows whether they are stuck on the network or on memory.
func InstrumentPerfStats(ctx context.Context, tel API, interval time.Duration) {
	meter := otel.Meter("tagaudit.perf_stats")
	cpuGauge, _ := meter.Float64Gauge("cpu_usage")
	memoryGauge, _ := meter.Int64Gauge("allocated_mb")
	liveObjectsGauge, _ := meter.Int64Gauge("live_objects")
	goroutineGauge, _ := meter.Int64Gauge("goroutine_count")

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				stats := ReadPerfStats(time.Second)
				if stats.CpuAvailable {
					cpuGauge.Record(ctx, stats.CpuPercent)
				} else {
					tel.ReportWarning(report_perf_stats_cpu)
				}
				memoryGauge.Record(ctx, stats.AllocatedMb)
				liveObjectsGauge.Record(ctx, stats.LiveObjects)
				goroutineGauge.Record(ctx, stats.Goroutines)
			case <-ctx.Done():
				return
			}
		}
	}()
}

const report_perf_stats_cpu = "perf_stats.read-cpu"
