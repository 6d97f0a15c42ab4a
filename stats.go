package swarm

import (
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/dustin/go-humanize"

	"github.com/kalorn/swarm/ratemeter"
)

// Monotonic atomic byte counter.
type Count struct {
	n int64
}

var _ fmt.Stringer = (*Count)(nil)

func (me *Count) Add(n int64) {
	atomic.AddInt64(&me.n, n)
}

func (me *Count) Int64() int64 {
	return atomic.LoadInt64(&me.n)
}

func (me *Count) String() string {
	return fmt.Sprintf("%v", me.Int64())
}

func (me *Count) MarshalJSON() ([]byte, error) {
	return json.Marshal(me.Int64())
}

// One direction of transfer: the total moved, its rolling rate, and the
// budget gate consulted before moving more.
type TransferStats struct {
	Total   Count
	Limiter *ratemeter.Limiter
}

func newTransferStats() TransferStats {
	return TransferStats{
		Limiter: ratemeter.NewLimiter(ratemeter.NewMeter()),
	}
}

// Counts bytes into both the running total and the rate meter.
func (me *TransferStats) Add(n int64) {
	me.Total.Add(n)
	me.Limiter.Add(n)
}

func (me *TransferStats) Rate() float64 {
	return me.Limiter.Meter().Rate()
}

// Process-wide transfer accounting: the two global direction pairs. Add
// methods are safe from any goroutine; Update must come from the single tick
// scheduler.
type Stats struct {
	Download TransferStats
	Upload   TransferStats
}

func NewStats() *Stats {
	return &Stats{
		Download: newTransferStats(),
		Upload:   newTransferStats(),
	}
}

// Rolls both rate windows and re-applies the configured bandwidth limits.
// Limits are re-read every tick so live configuration changes stick.
func (me *Stats) Update(cfg *Config) {
	me.Download.Limiter.Meter().Update()
	me.Upload.Limiter.Meter().Update()
	if cfg != nil {
		me.Download.Limiter.SetLimit(cfg.DownloadRateLimit())
		me.Upload.Limiter.SetLimit(cfg.UploadRateLimit())
	}
}

func (me *Stats) WriteStatus(w io.Writer) {
	fmt.Fprintf(w, "downloaded: %v (%v/s)\n",
		humanize.Bytes(uint64(me.Download.Total.Int64())),
		humanize.Bytes(uint64(me.Download.Rate())))
	fmt.Fprintf(w, "uploaded: %v (%v/s)\n",
		humanize.Bytes(uint64(me.Upload.Total.Int64())),
		humanize.Bytes(uint64(me.Upload.Rate())))
}
