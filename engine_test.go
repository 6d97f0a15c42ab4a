package swarm

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memDest struct {
	mu  sync.Mutex
	buf []byte
}

func (me *memDest) WriteAt(p []byte, off int64) (int, error) {
	me.mu.Lock()
	defer me.mu.Unlock()
	if need := int(off) + len(p); need > len(me.buf) {
		me.buf = append(me.buf, make([]byte, need-len(me.buf))...)
	}
	copy(me.buf[off:], p)
	return len(p), nil
}

func TestEngineReceivedBlock(t *testing.T) {
	e := NewEngine(nil)
	e.Start()
	defer e.Close()

	dest := new(memDest)
	done := make(chan error, 1)
	e.ReceivedBlock(dest, 4, []byte("data"), func(err error) { done <- err })
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("write never completed")
	}
	assert.EqualValues(t, 4, e.Stats.Download.Total.Int64())
	dest.mu.Lock()
	defer dest.mu.Unlock()
	assert.Equal(t, []byte("\x00\x00\x00\x00data"), dest.buf)
}

func TestEngineUploadAdmission(t *testing.T) {
	e := NewEngine(nil)
	// Unlimited by default.
	assert.True(t, e.AllowUpload(1<<30))
	e.WroteBytes(100)
	assert.EqualValues(t, 100, e.Stats.Upload.Total.Int64())
}

type countingMode struct {
	updates atomic.Int64
}

func (me *countingMode) RequestAllPeersForSameBlock() bool { return false }
func (me *countingMode) MaskBitfields() bool               { return false }
func (me *countingMode) Bind(TorrentView) error            { return nil }
func (me *countingMode) Detach()                           {}
func (me *countingMode) Update()                           { me.updates.Add(1) }
func (me *countingMode) NotePeerEvent(PeerEvent)           {}

func TestEngineStartIdempotent(t *testing.T) {
	e := NewEngine(nil)
	m := new(countingMode)
	e.AddMode(m)
	e.Start()
	e.Start()
	// One driver ticks once on entry and not again until the max interval.
	// A duplicated loop would tick a second time immediately.
	time.Sleep(300 * time.Millisecond)
	assert.LessOrEqual(t, m.updates.Load(), int64(1))
	require.NoError(t, e.Close())
}

func TestDriverTicksModes(t *testing.T) {
	cfg := NewDefaultConfig()
	stats := NewStats()
	d := NewDriver(cfg, stats)

	tor := newFakeTorrent([]PieceState{{Index: 0, Rarity: 1}})
	planner := new(recordingPlanner)
	m := NewNormalMode()
	m.Planner = planner
	require.NoError(t, m.Bind(tor))
	d.AddMode(m)

	d.tick()
	d.tick()
	assert.Len(t, planner.ranked, 2)

	d.RemoveMode(m)
	d.tick()
	assert.Len(t, planner.ranked, 2)
}

func TestDriverRunAndClose(t *testing.T) {
	cfg := NewDefaultConfig()
	d := NewDriver(cfg, NewStats())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		d.Run()
	}()
	d.Tickle()
	time.Sleep(10 * time.Millisecond)
	d.Close()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("driver did not stop")
	}
}
