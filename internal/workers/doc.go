/*
Package workers sizes the goroutine pools webmedia starts for batch work.

Sizes follow runtime.GOMAXPROCS, which tracks the container CPU quota,
rather than runtime.NumCPU, which reports the host:

	// one decoder per CPU, never more than the batch
	n := workers.ForWarm(len(jobs), 0)

	// general form: weight per CPU and an optional cap
	n := workers.Size(workers.Scan, 16)

WEBMEDIA_WORKERS pins the size for every pool. The cap still applies.
*/
package workers
