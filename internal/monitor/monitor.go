// Package monitor provides the progress and memory-usage reporting sinks.
//
// Both sinks are passive observers invoked at fixed line-count intervals;
// they never alter processing order or outcome.
package monitor

import (
	"log/slog"
	"runtime"
)

// DefaultInterval is the number of lines between reports.
const DefaultInterval = 100000

// Reporter logs periodic progress and memory-usage notifications.
type Reporter struct {
	logger   *slog.Logger
	interval int
	progress bool
	memory   bool
}

// New creates a reporter. A nil logger uses slog.Default(). interval <= 0
// falls back to DefaultInterval.
func New(logger *slog.Logger, interval int, progress, memory bool) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reporter{
		logger:   logger,
		interval: interval,
		progress: progress,
		memory:   memory,
	}
}

// Active reports whether any sink is enabled.
func (r *Reporter) Active() bool { return r.progress || r.memory }

// Observe is called with the running line count after each line.
func (r *Reporter) Observe(lines int) {
	if lines == 0 || lines%r.interval != 0 {
		return
	}
	if r.progress {
		r.logger.Info("progress", "lines", lines)
	}
	if r.memory {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		r.logger.Info("memory",
			"lines", lines,
			"heap_alloc_bytes", ms.HeapAlloc,
			"heap_objects", ms.HeapObjects,
			"sys_bytes", ms.Sys)
	}
}
