package metrics

import (
	"context"
	"runtime"
	"time"
)

// CollectSystem samples memory, goroutine and GC figures once.
func CollectSystem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	UpdateSystemMemoryUsage(ms.Alloc)
	UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if ms.NumGC > 0 {
		last := ms.PauseNs[(ms.NumGC+255)%256]
		RecordSystemGCPauseTime(float64(last) / float64(time.Millisecond))
	}
}

// RunSystemCollector samples system metrics every RefreshInterval until ctx
// is done. It always returns nil so it can run under an errgroup.
func RunSystemCollector(ctx context.Context) error {
	ticker := time.NewTicker(RefreshInterval())
	defer ticker.Stop()

	CollectSystem()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			CollectSystem()
		}
	}
}
