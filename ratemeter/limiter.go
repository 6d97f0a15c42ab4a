package ratemeter

import (
	"time"

	"golang.org/x/time/rate"
)

// A rough default burst when a finite limit is applied without one. Large
// enough to fit a few whole chunks so a single admission check can cover a
// block.
const defaultLimiterBurst = 1 << 16

// Sets the burst if it's zero, which callers use to request a sane default.
func setBurstIfZero(l *rate.Limiter, def int) {
	if l.Burst() == 0 && l.Limit() != rate.Inf {
		l.SetBurst(def)
	}
}

// Wraps a Meter with a mutable byte/sec budget. A limit <= 0 means unlimited.
// Safe for concurrent use.
type Limiter struct {
	meter   *Meter
	limiter *rate.Limiter
}

func NewLimiter(meter *Meter) *Limiter {
	return &Limiter{
		meter:   meter,
		limiter: rate.NewLimiter(rate.Inf, 0),
	}
}

func (me *Limiter) Meter() *Meter {
	return me.meter
}

// Applies the configured limit. Called every tick so live configuration
// changes take effect without caching.
func (me *Limiter) SetLimit(bytesPerSec int64) {
	if bytesPerSec <= 0 {
		me.limiter.SetLimit(rate.Inf)
		return
	}
	me.limiter.SetLimit(rate.Limit(bytesPerSec))
	setBurstIfZero(me.limiter, defaultLimiterBurst)
}

func (me *Limiter) Limit() rate.Limit {
	return me.limiter.Limit()
}

// Whether n more bytes may be dispatched now. Consumes budget when it
// returns true.
func (me *Limiter) Allow(n int) bool {
	return me.limiter.AllowN(time.Now(), n)
}

// Records bytes actually transferred.
func (me *Limiter) Add(n int64) {
	me.meter.Add(n)
}
