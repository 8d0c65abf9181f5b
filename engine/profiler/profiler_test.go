package profiler

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-pipeline/engine/renderer/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	cycle uint
	stats pipeline.CacheStats
}

func (f *fakeSource) Cycle() uint {
	return f.cycle
}

func (f *fakeSource) CacheStats() pipeline.CacheStats {
	return f.stats
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestTickReportsAfterInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	source := &fakeSource{cycle: 10}
	var reports []Report
	p := NewProfiler(source,
		WithClock(clock.now),
		WithInterval(500*time.Millisecond),
		WithReportCallback(func(r Report) { reports = append(reports, r) }),
	)

	for range 4 {
		clock.advance(100 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	clock.advance(100 * time.Millisecond)
	assert.True(t, p.Tick())

	require.Len(t, reports, 1)
	assert.InDelta(t, 10.0, reports[0].FPS, 0.001)
	assert.Equal(t, uint(10), reports[0].Cycle)
}

func TestCacheHitRateUsesIntervalDeltas(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	source := &fakeSource{stats: pipeline.CacheStats{Hits: 3, Misses: 1}}
	var last Report
	p := NewProfiler(source,
		WithClock(clock.now),
		WithReportCallback(func(r Report) { last = r }),
	)

	clock.advance(time.Second)
	require.True(t, p.Tick())
	assert.InDelta(t, 0.75, last.CacheHitRate, 0.001)

	source.stats = pipeline.CacheStats{Hits: 13, Misses: 1, Entries: 2}
	clock.advance(time.Second)
	require.True(t, p.Tick())
	assert.InDelta(t, 1.0, last.CacheHitRate, 0.001)
	assert.Equal(t, 2, last.Cache.Entries)

	clock.advance(time.Second)
	require.True(t, p.Tick())
	assert.Zero(t, last.CacheHitRate)
}

func TestNilSource(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(nil, WithClock(clock.now))

	clock.advance(2 * time.Second)
	assert.True(t, p.Tick())
}
