package memory

import (
	"fmt"
	"math"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"webmedia/internal/logging"
)

// DefaultMemoryRatio is the share of container memory given to the Go heap.
// The rest is left for libvips and goroutine stacks.
const DefaultMemoryRatio = 0.85

// Values of ConfigResult.Source.
const (
	sourceGOMEMLIMIT  = "GOMEMLIMIT"
	sourceMEMORYLIMIT = "MEMORY_LIMIT"
	sourceNone        = "none"
)

// ConfigResult describes how the runtime memory limit was chosen.
type ConfigResult struct {
	Configured bool
	// Source is "GOMEMLIMIT", "MEMORY_LIMIT" or "none".
	Source string
	// ContainerLimit is MEMORY_LIMIT in bytes, 0 when unused.
	ContainerLimit int64
	// GoMemLimit is the soft limit handed to the runtime, 0 when unset.
	GoMemLimit int64
	// Ratio applied to ContainerLimit, 0 when unused.
	Ratio float64
}

// ConfigureFromEnv sets the runtime soft memory limit. An explicit GOMEMLIMIT
// is left alone; otherwise MEMORY_LIMIT (bytes) scaled by MEMORY_RATIO is
// applied. Call it before the first large allocation.
func ConfigureFromEnv() ConfigResult {
	if v := os.Getenv("GOMEMLIMIT"); v != "" {
		logging.Info("GOMEMLIMIT set via environment: %s", v)
		// The runtime parsed it at start; read it back.
		if limit := debug.SetMemoryLimit(-1); limit > 0 && limit < math.MaxInt64 {
			return ConfigResult{Configured: true, Source: sourceGOMEMLIMIT, GoMemLimit: limit}
		}
		return ConfigResult{}
	}

	raw := os.Getenv("MEMORY_LIMIT")
	if raw == "" {
		logging.Debug("MEMORY_LIMIT not set, GOMEMLIMIT will not be configured automatically")
		return ConfigResult{Source: sourceNone}
	}

	container, err := parseLimit(raw)
	if err != nil {
		logging.Warn("Ignoring MEMORY_LIMIT %q: %v", raw, err)
		return ConfigResult{Source: sourceNone}
	}

	ratio := parseRatio(os.Getenv("MEMORY_RATIO"))
	limit := int64(float64(container) * ratio)
	debug.SetMemoryLimit(limit)

	logging.Info("Configured GOMEMLIMIT: %s (%.1f%% of %s container limit)",
		FormatBytes(limit), ratio*100, FormatBytes(container))

	return ConfigResult{
		Configured:     true,
		Source:         sourceMEMORYLIMIT,
		ContainerLimit: container,
		GoMemLimit:     limit,
		Ratio:          ratio,
	}
}

func parseLimit(raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}

// parseRatio returns DefaultMemoryRatio for an empty, malformed or
// out-of-range (0, 1] value.
func parseRatio(raw string) float64 {
	if raw == "" {
		return DefaultMemoryRatio
	}
	r, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	switch {
	case err != nil:
		logging.Warn("Failed to parse MEMORY_RATIO %q: %v, using default %.2f", raw, err, DefaultMemoryRatio)
	case r <= 0 || r > 1:
		logging.Warn("MEMORY_RATIO %q out of range (0.0-1.0], using default %.2f", raw, DefaultMemoryRatio)
	default:
		return r
	}
	return DefaultMemoryRatio
}

// FormatBytes renders a byte count with binary units, e.g. "1.5 MiB".
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
