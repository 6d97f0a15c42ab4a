// Package diskwriter decouples network receipt from storage commit: verified
// block data is queued here and flushed to storage by a bounded pool of
// workers so the network goroutines never block on disk.
package diskwriter

import (
	"fmt"
	"io"
	stdsync "sync"
	"sync/atomic"
	"time"

	"github.com/anacrolix/chansync"
	"github.com/anacrolix/log"
	"github.com/anacrolix/sync"
)

// How long an idle worker waits before re-checking for work and shutdown.
const workerIdleWait = time.Second

const DefaultWorkers = 4

// Returned via the completion callback for writes queued after Close.
var ErrClosed = fmt.Errorf("disk writer closed")

type write struct {
	dest io.WriterAt
	off  int64
	data []byte
	// Called exactly once with the write outcome. May be nil.
	done func(error)
}

// Unbounded multi-producer write-back queue drained by a fixed worker pool.
// Entries are consumed exactly once. There is no strict global FIFO across
// workers, and no retry: a failed write is reported to its callback and
// forgotten.
type Writer struct {
	logger  log.Logger
	workers int

	mu      sync.Mutex
	queue   []write
	started bool

	queued atomic.Int64
	wake   chansync.BroadcastCond
	closed chansync.SetOnce
	wg     stdsync.WaitGroup
}

func New(workers int, logger log.Logger) *Writer {
	if workers < 1 {
		workers = 1
	}
	return &Writer{
		logger:  logger,
		workers: workers,
	}
}

// Spins up the worker pool. Idempotent.
func (me *Writer) Start() {
	me.mu.Lock()
	defer me.mu.Unlock()
	if me.started {
		return
	}
	me.started = true
	for i := 0; i < me.workers; i++ {
		me.wg.Add(1)
		go me.worker()
	}
}

// Enqueues a write and returns immediately. done, if non-nil, fires exactly
// once from a worker goroutine with the write outcome.
func (me *Writer) Queue(dest io.WriterAt, off int64, data []byte, done func(error)) {
	if me.closed.IsSet() {
		if done != nil {
			done(ErrClosed)
		}
		return
	}
	me.queued.Add(1)
	queuedWrites.Inc()
	me.mu.Lock()
	me.queue = append(me.queue, write{dest, off, data, done})
	me.mu.Unlock()
	me.wake.Broadcast()
}

// Writes not yet completed (success or failure) by a worker.
func (me *Writer) QueuedWrites() int64 {
	return me.queued.Load()
}

// Stops accepting work, wakes all workers and joins them. Entries still
// queued are abandoned: this is process teardown, not a durability log.
// In-flight dequeued entries always complete and fire their callbacks.
func (me *Writer) Close() error {
	me.closed.Set()
	me.wake.Broadcast()
	me.wg.Wait()
	return nil
}

func (me *Writer) worker() {
	defer me.wg.Done()
	for {
		me.mu.Lock()
		if me.closed.IsSet() {
			me.mu.Unlock()
			return
		}
		if len(me.queue) == 0 {
			// Grab the signal channel before releasing the lock so a
			// concurrent Queue can't slip between the emptiness check and
			// the wait.
			wake := me.wake.Signaled()
			me.mu.Unlock()
			select {
			case <-me.closed.Done():
				return
			case <-wake:
			case <-time.After(workerIdleWait):
			}
			continue
		}
		// Take the whole batch; other workers see an empty queue.
		batch := me.queue
		me.queue = nil
		me.mu.Unlock()
		for i := range batch {
			me.runWrite(&batch[i])
		}
	}
}

func (me *Writer) runWrite(w *write) {
	defer me.queued.Add(-1)
	defer queuedWrites.Dec()
	err := me.doWrite(w)
	if err != nil {
		failedWrites.Inc()
		me.logger.Levelf(log.Warning, "error writing %v bytes at offset %v: %v", len(w.data), w.off, err)
	} else {
		completedWrites.Inc()
	}
	if w.done == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			me.logger.Levelf(log.Error, "write completion callback panicked: %v", r)
		}
	}()
	w.done(err)
}

// Runs the storage write, converting panics from the collaborator into
// errors so a bad destination can't kill the worker.
func (me *Writer) doWrite(w *write) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("storage write panicked: %v", r)
		}
	}()
	var n int
	n, err = w.dest.WriteAt(w.data, w.off)
	if err == nil && n != len(w.data) {
		err = io.ErrShortWrite
	}
	return
}
