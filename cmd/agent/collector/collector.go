// Package collector gathers Go runtime and host gauges as metric points.
package collector

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/and161185/custommetrics/model"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

const (
	runtimePrefix = "go.runtime."
	hostPrefix    = "host."
)

// CollectRuntimeMetrics reads runtime.MemStats into points collected at the given time.
func CollectRuntimeMetrics(at time.Time, instanceID string) []model.Point {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	values := []struct {
		name  string
		value float64
	}{
		{"Alloc", float64(m.Alloc)},
		{"Frees", float64(m.Frees)},
		{"GCCPUFraction", m.GCCPUFraction},
		{"GCSys", float64(m.GCSys)},
		{"HeapAlloc", float64(m.HeapAlloc)},
		{"HeapIdle", float64(m.HeapIdle)},
		{"HeapInuse", float64(m.HeapInuse)},
		{"HeapObjects", float64(m.HeapObjects)},
		{"HeapReleased", float64(m.HeapReleased)},
		{"HeapSys", float64(m.HeapSys)},
		{"Mallocs", float64(m.Mallocs)},
		{"NextGC", float64(m.NextGC)},
		{"NumGC", float64(m.NumGC)},
		{"PauseTotalNs", float64(m.PauseTotalNs)},
		{"StackInuse", float64(m.StackInuse)},
		{"Sys", float64(m.Sys)},
		{"TotalAlloc", float64(m.TotalAlloc)},
		{"NumGoroutine", float64(runtime.NumGoroutine())},
	}

	res := make([]model.Point, 0, len(values))
	for _, v := range values {
		res = append(res, point(runtimePrefix+v.name, v.value, at, instanceID))
	}
	return res
}

// CollectHostMetrics samples memory and per-CPU utilization. CPU usage is measured
// over interval, so the call blocks for that long.
func CollectHostMetrics(ctx context.Context, at time.Time, instanceID string, interval time.Duration) ([]model.Point, error) {
	memory, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("memory stats: %w", err)
	}

	res := []model.Point{
		point(hostPrefix+"TotalMemory", float64(memory.Total), at, instanceID),
		point(hostPrefix+"FreeMemory", float64(memory.Free), at, instanceID),
		point(hostPrefix+"UsedMemoryPercent", memory.UsedPercent, at, instanceID),
	}

	percents, err := cpu.PercentWithContext(ctx, interval, true)
	if err != nil {
		return nil, fmt.Errorf("cpu stats: %w", err)
	}
	for i, p := range percents {
		res = append(res, point(fmt.Sprintf("%sCPUutilization%d", hostPrefix, i+1), p, at, instanceID))
	}
	return res, nil
}

func point(name string, value float64, at time.Time, instanceID string) model.Point {
	return model.Point{Name: name, Value: value, CollectedAt: at, InstanceID: instanceID}
}
