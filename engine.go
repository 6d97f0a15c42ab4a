package swarm

import (
	"io"
	"sync"

	"github.com/anacrolix/log"

	"github.com/kalorn/swarm/diskwriter"
)

// Ties the orchestration pieces together: the tick driver, the global
// transfer stats and the disk write-back pool. One Engine per process.
type Engine struct {
	cfg    *Config
	logger log.Logger

	Stats  *Stats
	Disk   *diskwriter.Writer
	driver *Driver

	startOnce sync.Once
}

func NewEngine(cfg *Config) *Engine {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	logger := cfg.Logger
	stats := NewStats()
	return &Engine{
		cfg:    cfg,
		logger: logger,
		Stats:  stats,
		Disk:   diskwriter.New(cfg.MaxConcurrentWrites, logger),
		driver: NewDriver(cfg, stats),
	}
}

// Starts the disk workers and the tick loop. Idempotent: repeat calls don't
// spawn another driver goroutine, which would double up stats window rolls.
func (me *Engine) Start() {
	me.startOnce.Do(func() {
		me.Disk.Start()
		go me.driver.Run()
	})
}

// Stops ticking and joins the disk workers. Writes still queued are
// abandoned; in-flight ones complete.
func (me *Engine) Close() error {
	me.driver.Close()
	return me.Disk.Close()
}

// Registers a torrent's active mode with the tick scheduler.
func (me *Engine) AddMode(m Mode) {
	me.driver.AddMode(m)
}

func (me *Engine) RemoveMode(m Mode) {
	me.driver.RemoveMode(m)
}

// Forces an early scheduler pass, e.g. after piece verification.
func (me *Engine) Tickle() {
	me.driver.Tickle()
}

// Accounts a received block and queues its storage commit. Never blocks on
// disk. done fires with the write outcome; redelivery on failure is the
// caller's call, this layer doesn't retry.
func (me *Engine) ReceivedBlock(dest io.WriterAt, off int64, data []byte, done func(error)) {
	me.Stats.Download.Add(int64(len(data)))
	me.Disk.Queue(dest, off, data, done)
}

// Whether n more bytes may be sent to peers now. Consumes upload budget when
// it returns true; callers should then account the bytes with WroteBytes.
func (me *Engine) AllowUpload(n int) bool {
	return me.Stats.Upload.Limiter.Allow(n)
}

// Accounts bytes actually sent to peers.
func (me *Engine) WroteBytes(n int64) {
	me.Stats.Upload.Add(n)
}
