package swarm

import (
	"time"

	"github.com/anacrolix/chansync"
	"github.com/anacrolix/chansync/events"
	"github.com/anacrolix/sync"
)

const (
	// Don't tick more often than this even when tickled.
	driverMinTickInterval = 100 * time.Millisecond
	// Always tick at least this often.
	driverMaxTickInterval = time.Second
)

// The periodic scheduler: every tick it refreshes the global stats (rolling
// the rate windows and re-applying limits) and runs each registered mode's
// Update. Tickle forces an early pass.
type Driver struct {
	cfg   *Config
	stats *Stats

	mu    sync.Mutex
	modes []Mode

	tickled chansync.BroadcastCond
	closed  chansync.SetOnce
}

func NewDriver(cfg *Config, stats *Stats) *Driver {
	return &Driver{
		cfg:   cfg,
		stats: stats,
	}
}

func (me *Driver) AddMode(m Mode) {
	me.mu.Lock()
	defer me.mu.Unlock()
	me.modes = append(me.modes, m)
}

func (me *Driver) RemoveMode(m Mode) {
	me.mu.Lock()
	defer me.mu.Unlock()
	for i, have := range me.modes {
		if have == m {
			me.modes = append(me.modes[:i], me.modes[i+1:]...)
			return
		}
	}
}

func (me *Driver) Tickle() {
	me.tickled.Broadcast()
}

func (me *Driver) Close() {
	me.closed.Set()
}

// Blocks until Close. Usually spawned as a goroutine by the Engine.
func (me *Driver) Run() {
	for {
		update := func() events.Signaled {
			me.mu.Lock()
			defer me.mu.Unlock()
			me.tick()
			return me.tickled.Signaled()
		}()
		minWait := time.After(driverMinTickInterval)
		maxWait := time.After(driverMaxTickInterval)
		select {
		case <-me.closed.Done():
			return
		case <-minWait:
		}
		select {
		case <-me.closed.Done():
			return
		case <-update:
		case <-maxWait:
		}
	}
}

func (me *Driver) tick() {
	driverTicks.Add(1)
	me.stats.Update(me.cfg)
	for _, m := range me.modes {
		m.Update()
	}
}
