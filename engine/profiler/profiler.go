package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/logging"
	"go.uber.org/zap"
)

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the engine log at a configurable interval.
type Profiler struct {
	frameCount     int
	started        bool
	lastTime       time.Duration
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler. An interval of zero defaults to 1 second.
//
// Parameters:
//   - interval: how often stats are logged
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{updateInterval: interval}
}

// Tick should be called once per frame with the frame timestamp.
// Logs FPS, heap usage, allocation rate, GC count/pause times and total memory when the
// update interval has elapsed, together with any caller supplied fields.
//
// Parameters:
//   - now: the frame timestamp
//   - fields: extra fields logged with the stats, e.g. live particle counts
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(now time.Duration, fields ...zap.Field) bool {
	if !p.started {
		p.started = true
		p.lastTime = now
		return false
	}
	p.frameCount++
	elapsed := now - p.lastTime
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses.
	gcCount := p.memStats.NumGC
	var lastPause, maxPause time.Duration
	if gcCount > 0 {
		lastPause = time.Duration(p.memStats.PauseNs[(gcCount-1)%256])
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := time.Duration(p.memStats.PauseNs[i%256]); pause > maxPause {
				maxPause = pause
			}
		}
	}

	logging.Named("profiler").Info("frame stats", append([]zap.Field{
		zap.Float64("fps", fps),
		zap.Float64("heapMB", allocMB),
		zap.Float64("allocRateMBps", allocRateMB),
		zap.Uint32("gc", gcCount),
		zap.Duration("gcLastPause", lastPause),
		zap.Duration("gcMaxPause", maxPause),
		zap.Float64("sysMB", sysMB),
	}, fields...)...)

	p.frameCount = 0
	p.lastTime = now
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
