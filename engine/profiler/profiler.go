// Package profiler samples frame rate, draw counts and memory statistics and logs them at a fixed
// interval.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/skygen/common"
)

// Sample is one interval's worth of statistics.
type Sample struct {
	FPS          float64
	DrawsPerSec  float64
	HeapMB       float64
	AllocRateMBs float64
	SysMB        float64
	NumGC        uint32
	LastPauseUs  uint64
	MaxPauseUs   uint64
}

// Profiler tracks frame timing and memory statistics. It is not safe for concurrent use.
type Profiler struct {
	frameCount     int
	drawCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	now            func() time.Time
	last           Sample
}

// ProfilerBuilderOption is a functional option used to configure a Profiler during construction.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often statistics are logged. Defaults to one second.
//
// Parameters:
//   - d: the interval
//
// Returns:
//   - ProfilerBuilderOption: a function that sets the interval
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces time.Now.
//
// Parameters:
//   - now: the clock
//
// Returns:
//   - ProfilerBuilderOption: a function that sets the clock
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a Profiler whose first interval starts now.
//
// Parameters:
//   - opts: a variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the profiler
func NewProfiler(opts ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{updateInterval: time.Second, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick records one frame with the given number of draw calls. When the interval has elapsed it
// computes a Sample, logs it at info level and starts a new interval.
//
// Parameters:
//   - draws: the draw calls issued this frame
//
// Returns:
//   - bool: true if a sample was taken this tick
func (p *Profiler) Tick(draws int) bool {
	p.frameCount++
	p.drawCount += draws
	now := p.now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	secs := elapsed.Seconds()
	s := Sample{
		FPS:          float64(p.frameCount) / secs,
		DrawsPerSec:  float64(p.drawCount) / secs,
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:        float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMBs: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / secs,
		NumGC:        p.memStats.NumGC,
	}
	if gc := p.memStats.NumGC; gc > 0 {
		// PauseNs is a ring of the last 256 pauses.
		s.LastPauseUs = p.memStats.PauseNs[(gc-1)%256] / 1000
		start := p.lastGCCount
		if gc-start > 256 {
			start = gc - 256
		}
		for i := start; i < gc; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	common.Logger().Info("profiler",
		"fps", s.FPS,
		"draws/s", s.DrawsPerSec,
		"heap_mb", s.HeapMB,
		"alloc_mb/s", s.AllocRateMBs,
		"gc", s.NumGC,
		"gc_last_us", s.LastPauseUs,
		"gc_max_us", s.MaxPauseUs,
		"sys_mb", s.SysMB,
	)

	p.last = s
	p.frameCount = 0
	p.drawCount = 0
	p.lastTime = now
	p.lastGCCount = s.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recent sample.
func (p *Profiler) Last() Sample {
	return p.last
}
