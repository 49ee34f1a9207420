// Package memory configures the Go heap limit from the container's memory
// limit and signals backpressure to image workers.
//
// GOMAXPROCS follows the cgroup CPU quota automatically; GOMEMLIMIT does
// not. Call [ConfigureFromEnv] first thing in main:
//
//	memory.ConfigureFromEnv()
//
// Environment variables:
//
//   - GOMEMLIMIT: standard Go variable, takes precedence over everything.
//   - MEMORY_LIMIT: container limit in bytes, usually from the Downward API.
//   - MEMORY_RATIO: share of MEMORY_LIMIT given to the Go heap (default 0.85).
//     The rest covers libvips allocations, goroutine stacks and OS buffers;
//     lower it when USE_VIPS is on and sources are large.
//
//	env:
//	- name: MEMORY_LIMIT
//	  valueFrom:
//	    resourceFieldRef:
//	      resource: limits.memory
//
// # Backpressure
//
// A [Monitor] samples heap usage against the limit. Above the critical mark
// it pauses; derivative warm-up waits on it before starting each job:
//
//	monitor := memory.NewMonitor(memory.DefaultConfig())
//	monitor.Start()
//	defer monitor.Stop()
//
//	if !monitor.WaitIfPaused() {
//	    return // stopped
//	}
package memory
