// Package fdmonitor watches the process's open file descriptor count so a
// leak across file reloads shows up in the log.
package fdmonitor

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sync"
)

// DefaultGrowthThreshold is how many descriptors above the baseline trigger a
// warning.
const DefaultGrowthThreshold = 32

// Count returns the current number of open file descriptors for this process.
// On non-Linux/macOS platforms, returns -1.
func Count() int {
	var fdDir string
	switch runtime.GOOS {
	case "darwin":
		fdDir = "/dev/fd"
	case "linux":
		fdDir = fmt.Sprintf("/proc/%d/fd", os.Getpid())
	default:
		return -1
	}
	entries, err := os.ReadDir(fdDir)
	if err != nil {
		return -1
	}
	return len(entries)
}

// Monitor compares the descriptor count against the count seen at creation.
type Monitor struct {
	mu        sync.Mutex
	logger    *slog.Logger
	count     func() int
	baseline  int
	threshold int
	warned    bool
}

// New records the current count as the baseline.
func New(logger *slog.Logger) *Monitor {
	return newMonitor(logger, Count, DefaultGrowthThreshold)
}

func newMonitor(logger *slog.Logger, count func() int, threshold int) *Monitor {
	return &Monitor{
		logger:    logger,
		count:     count,
		baseline:  count(),
		threshold: threshold,
	}
}

// Check logs a warning the first time the count grows past the threshold.
// It returns the current count and whether the growth is over the threshold.
func (m *Monitor) Check(reason string) (count int, over bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count = m.count()
	if count < 0 || m.baseline < 0 {
		return count, false
	}
	over = count-m.baseline >= m.threshold
	if over && !m.warned && m.logger != nil {
		m.logger.Warn("file descriptor count growing",
			"reason", reason, "count", count, "baseline", m.baseline)
		m.warned = true
	}
	if !over {
		m.warned = false
	}
	return count, over
}
