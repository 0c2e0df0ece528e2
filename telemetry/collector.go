// Package telemetry collects per-tick particle statistics and performance
// timings and writes them to CSV for offline analysis.
package telemetry

// Collector accumulates upload and population events within time windows
// and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32

	windowStartTick int32

	// Event counters for current window
	uploadSpans      int
	uploadComponents int
	fullUploads      int
	emittersAdded    int
	emittersRemoved  int
	poolTriggers     int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordUpload records one buffer span re-uploaded to the device.
func (c *Collector) RecordUpload(components int, full bool) {
	c.uploadSpans++
	c.uploadComponents += components
	if full {
		c.fullUploads++
	}
}

// RecordEmitterAdded records an emitter joining the group.
func (c *Collector) RecordEmitterAdded() {
	c.emittersAdded++
}

// RecordEmitterRemoved records an emitter leaving the group.
func (c *Collector) RecordEmitterRemoved() {
	c.emittersRemoved++
}

// RecordPoolTrigger records a burst emitter pulled from the pool.
func (c *Collector) RecordPoolTrigger() {
	c.poolTriggers++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// WindowStats is one flushed stats window, flat for CSV export.
type WindowStats struct {
	WindowStartTick int32   `csv:"window_start"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time_sec"`

	LiveParticles  int `csv:"live_particles"`
	TotalParticles int `csv:"total_particles"`
	Capacity       int `csv:"capacity"`
	Emitters       int `csv:"emitters"`
	PoolSize       int `csv:"pool_size"`

	UploadSpans      int `csv:"upload_spans"`
	UploadComponents int `csv:"upload_components"`
	FullUploads      int `csv:"full_uploads"`

	EmittersAdded   int `csv:"emitters_added"`
	EmittersRemoved int `csv:"emitters_removed"`
	PoolTriggers    int `csv:"pool_triggers"`
}

// Flush produces a WindowStats snapshot and resets counters for the next
// window. The caller supplies the current group gauges.
func (c *Collector) Flush(currentTick int32, live, total, capacity, emitters, poolSize int) WindowStats {
	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		LiveParticles:  live,
		TotalParticles: total,
		Capacity:       capacity,
		Emitters:       emitters,
		PoolSize:       poolSize,

		UploadSpans:      c.uploadSpans,
		UploadComponents: c.uploadComponents,
		FullUploads:      c.fullUploads,

		EmittersAdded:   c.emittersAdded,
		EmittersRemoved: c.emittersRemoved,
		PoolTriggers:    c.poolTriggers,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.uploadSpans = 0
	c.uploadComponents = 0
	c.fullUploads = 0
	c.emittersAdded = 0
	c.emittersRemoved = 0
	c.poolTriggers = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
