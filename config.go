package swarm

import (
	"sync/atomic"

	"github.com/anacrolix/log"

	"github.com/kalorn/swarm/diskwriter"
)

// Engine configuration. The rate limits may be changed while the engine is
// running; they're re-read on every tick. Everything else is fixed once the
// engine starts.
type Config struct {
	// Disk writer pool size.
	MaxConcurrentWrites int

	Logger log.Logger

	// Bytes/sec; zero or negative means unlimited.
	downloadRateLimit atomic.Int64
	uploadRateLimit   atomic.Int64
}

func NewDefaultConfig() *Config {
	return &Config{
		MaxConcurrentWrites: diskwriter.DefaultWorkers,
		Logger:              log.Default,
	}
}

func (cfg *Config) SetDownloadRateLimit(bytesPerSec int64) {
	cfg.downloadRateLimit.Store(bytesPerSec)
}

func (cfg *Config) DownloadRateLimit() int64 {
	return cfg.downloadRateLimit.Load()
}

func (cfg *Config) SetUploadRateLimit(bytesPerSec int64) {
	cfg.uploadRateLimit.Store(bytesPerSec)
}

func (cfg *Config) UploadRateLimit() int64 {
	return cfg.uploadRateLimit.Load()
}
