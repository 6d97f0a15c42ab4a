// Package ratemeter provides the rolling transfer-rate estimator and the
// token-budget limiter that admission control consults before dispatching
// more bytes.
package ratemeter

import (
	"math"
	"sync/atomic"
	"time"
)

const (
	// Ticks retained in the rolling window.
	DefaultWindow = 10
	// Nominal interval between Update calls.
	DefaultTickInterval = time.Second
)

// Rolling bytes/sec estimator. Add is safe from any goroutine. Update must be
// called from exactly one place per tick or the window advances twice.
type Meter struct {
	cur atomic.Int64
	// Rate as float64 bits so readers never block on Update.
	rate atomic.Uint64

	// Only the Update caller touches these.
	buckets []int64
	sum     int64
	i       int
	tick    time.Duration
}

func NewMeter() *Meter {
	return NewMeterWindow(DefaultWindow, DefaultTickInterval)
}

func NewMeterWindow(window int, tick time.Duration) *Meter {
	if window < 1 {
		window = 1
	}
	return &Meter{
		buckets: make([]int64, window),
		tick:    tick,
	}
}

func (me *Meter) Add(n int64) {
	me.cur.Add(n)
}

// Rolls the window forward one tick and recomputes the average.
func (me *Meter) Update() {
	n := me.cur.Swap(0)
	me.sum += n - me.buckets[me.i]
	me.buckets[me.i] = n
	me.i = (me.i + 1) % len(me.buckets)
	windowSeconds := float64(len(me.buckets)) * me.tick.Seconds()
	me.rate.Store(math.Float64bits(float64(me.sum) / windowSeconds))
}

// Average bytes/sec over the window as of the last Update.
func (me *Meter) Rate() float64 {
	return math.Float64frombits(me.rate.Load())
}
