package workers

import (
	"os"
	"runtime"
	"strconv"
	"strings"
)

// EnvOverride names the variable that pins the pool size.
const EnvOverride = "WEBMEDIA_WORKERS"

// Per-CPU weights for the pool shapes webmedia runs.
const (
	// Decode covers decode, resample and encode. It saturates a core.
	Decode = 1.0
	// Scan covers directory listings and stats that mostly wait on disk.
	Scan = 2.0
)

// Size returns perCPU workers for each CPU the scheduler may use, never
// fewer than one and never more than limit (0 disables the cap).
// A positive integer in WEBMEDIA_WORKERS replaces the computed value.
func Size(perCPU float64, limit int) int {
	n, ok := override()
	if !ok {
		// GOMAXPROCS follows the cgroup CPU quota, NumCPU does not.
		n = max(1, int(float64(runtime.GOMAXPROCS(0))*perCPU))
	}
	if limit > 0 {
		n = min(n, limit)
	}
	return n
}

// ForWarm sizes a warm-up pool for jobs derivatives. There is no point in
// starting more workers than jobs.
func ForWarm(jobs, limit int) int {
	n := Size(Decode, limit)
	if jobs > 0 {
		n = min(n, jobs)
	}
	return n
}

func override() (int, bool) {
	raw := strings.TrimSpace(os.Getenv(EnvOverride))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
