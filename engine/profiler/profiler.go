// Package profiler reports frame rate, memory and pipeline cache activity at a fixed interval.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-pipeline/common"
	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/pipeline"
)

// Source supplies the renderer counters a report includes. renderer.Renderer implements it.
type Source interface {
	Cycle() uint
	CacheStats() pipeline.CacheStats
}

// Report is one interval's worth of statistics.
type Report struct {
	FPS         float64
	Cycle       uint
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
	Cache       pipeline.CacheStats
	// CacheHitRate is the share of cache lookups in the interval that hit, 0 when there were none.
	CacheHitRate float64
}

// Profiler tracks frame timing and logs a Report every interval.
type Profiler struct {
	source         Source
	now            func() time.Time
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	lastCache      pipeline.CacheStats
	onReport       func(Report)
}

// NewProfiler creates a Profiler reading renderer counters from source, which may be nil.
// The interval defaults to 1 second.
//
// Parameters:
//   - source: the renderer counters
//   - options: optional builder options
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(source Source, options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		source:         source,
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame. It logs a Report when the interval has elapsed.
//
// Returns:
//   - bool: true if a report was produced this tick
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	r := Report{FPS: float64(p.frameCount) / elapsed.Seconds()}

	runtime.ReadMemStats(&p.memStats)
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	r.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	r.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	r.GCCount = p.memStats.NumGC
	if r.GCCount > 0 {
		// PauseNs is a ring of the last 256 pauses
		r.LastPauseUs = p.memStats.PauseNs[(r.GCCount-1)%256] / 1000
		start := p.lastGCCount
		if r.GCCount-start > 256 {
			start = r.GCCount - 256
		}
		for i := start; i < r.GCCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > r.MaxPauseUs {
				r.MaxPauseUs = pause
			}
		}
	}

	if p.source != nil {
		r.Cycle = p.source.Cycle()
		r.Cache = p.source.CacheStats()
		hits := r.Cache.Hits - p.lastCache.Hits
		lookups := hits + r.Cache.Misses - p.lastCache.Misses
		if lookups > 0 {
			r.CacheHitRate = float64(hits) / float64(lookups)
		}
		p.lastCache = r.Cache
	}

	common.Logger().Info("profiler",
		"fps", r.FPS, "cycle", r.Cycle,
		"heap_mb", r.HeapMB, "alloc_rate_mb", r.AllocRateMB, "sys_mb", r.SysMB,
		"gc", r.GCCount, "gc_last_us", r.LastPauseUs, "gc_max_us", r.MaxPauseUs,
		"pipelines", r.Cache.Entries, "cache_hit_rate", r.CacheHitRate, "compiles", r.Cache.Compiles)
	if p.onReport != nil {
		p.onReport(r)
	}

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
