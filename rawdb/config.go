package rawdb

import "time"

// Config holds database-level options. Zero-value Config is valid; Open
// fills in defaults.
type Config struct {
	// SyncWrites additionally fsyncs the meta file whenever Flush rewrites
	// the region directory. The data mmap is msync'd on every Flush
	// regardless of this setting.
	SyncWrites bool

	// MaxRegionNameLen bounds how long a region name may be, guarding the
	// meta file's u16 name_len field from overflow. Defaults to 255.
	MaxRegionNameLen int

	// InitialFileSize reserves this many bytes in the data file on first
	// creation, before any region exists, to avoid an immediate grow on the
	// first CreateRegionIfNeeded. Defaults to 0 (no reservation).
	InitialFileSize int64

	// Logger receives structured events for region-store lifecycle
	// operations. A nil Logger is valid and silently discards events.
	Logger Logger

	// Metrics receives operational counters and gauges for region-store
	// activity. A nil Metrics is valid and silently discards updates.
	Metrics Metrics
}

// Logger is the minimal structured-logging surface the region store needs.
// internal/logger.Logger satisfies it; callers may supply their own.
type Logger interface {
	Debug(event string, fields map[string]any)
	Warn(event string, fields map[string]any)
}

// Metrics is the minimal instrumentation surface the region store needs.
// internal/metrics.Metrics satisfies it; callers may supply their own.
type Metrics interface {
	RecordRegionGrowth(strategy string, relocated bool)
	RecordHolePunch(outcome string)
	UpdateDbStats(sizeBytes int64, regionCount int, freeBytes int64, freeHoles int)
	RecordFlush(duration time.Duration)
}

func (c *Config) setDefaults() {
	if c.MaxRegionNameLen == 0 {
		c.MaxRegionNameLen = 255
	}
}

func (c *Config) logDebug(event string, fields map[string]any) {
	if c.Logger != nil {
		c.Logger.Debug(event, fields)
	}
}

func (c *Config) logWarn(event string, fields map[string]any) {
	if c.Logger != nil {
		c.Logger.Warn(event, fields)
	}
}

func (c *Config) recordGrowth(strategy string, relocated bool) {
	if c.Metrics != nil {
		c.Metrics.RecordRegionGrowth(strategy, relocated)
	}
}

func (c *Config) recordHolePunch(outcome string) {
	if c.Metrics != nil {
		c.Metrics.RecordHolePunch(outcome)
	}
}

func (c *Config) updateDbStats(sizeBytes int64, regionCount int, freeBytes int64, freeHoles int) {
	if c.Metrics != nil {
		c.Metrics.UpdateDbStats(sizeBytes, regionCount, freeBytes, freeHoles)
	}
}

func (c *Config) recordFlush(d time.Duration) {
	if c.Metrics != nil {
		c.Metrics.RecordFlush(d)
	}
}
