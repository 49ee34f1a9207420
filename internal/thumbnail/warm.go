package thumbnail

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"webmedia/internal/logging"
	"webmedia/internal/metrics"
)

// ErrWarmStopped is reported for jobs never started because the gate was
// closed.
var ErrWarmStopped = errors.New("warm-up stopped")

// Processor is the part of Engine that Warm drives.
type Processor interface {
	Process(source string, attrs Attrs) (string, Attrs, error)
}

// Gate holds back new jobs, e.g. under memory pressure. WaitIfPaused
// returns false once no more jobs may start.
type Gate interface {
	WaitIfPaused() bool
}

// WarmJob is one source to pre-generate.
type WarmJob struct {
	Source string `json:"source"`
	Attrs  Attrs  `json:"attrs,omitempty"`
}

// WarmResult is the outcome of a WarmJob.
type WarmResult struct {
	Source string `json:"source"`
	URL    string `json:"url,omitempty"`
	Attrs  Attrs  `json:"attrs,omitempty"`
	Err    error  `json:"-"`
}

type warmTask struct {
	index int
	job   WarmJob
}

// Warm runs p.Process for every job on numWorkers goroutines and returns the
// results in job order. Once ctx is done no further jobs are started; the
// ones never started report ctx.Err().
func Warm(ctx context.Context, p Processor, jobs []WarmJob, numWorkers int) []WarmResult {
	return WarmGated(ctx, p, jobs, numWorkers, nil)
}

// WarmGated is Warm with every job dispatch waiting on gate first. A nil
// gate never waits.
func WarmGated(ctx context.Context, p Processor, jobs []WarmJob, numWorkers int, gate Gate) []WarmResult {
	results := make([]WarmResult, len(jobs))
	if len(jobs) == 0 {
		return results
	}
	numWorkers = max(1, min(numWorkers, len(jobs)))
	metrics.WarmWorkers.Set(float64(numWorkers))

	logging.Info("Warming %d derivatives with %d workers", len(jobs), numWorkers)
	start := time.Now()

	tasks := make(chan warmTask)
	started := make([]bool, len(jobs))
	var failed atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				url, attrs, err := p.Process(t.job.Source, t.job.Attrs)
				if err != nil {
					failed.Add(1)
					metrics.WarmJobsTotal.WithLabelValues("error").Inc()
					logging.Warn("warm: %s: %v", t.job.Source, err)
				} else {
					metrics.WarmJobsTotal.WithLabelValues("success").Inc()
				}
				results[t.index] = WarmResult{Source: t.job.Source, URL: url, Attrs: attrs, Err: err}
			}
		}()
	}

	stopErr := dispatch(ctx, tasks, jobs, started, gate)
	close(tasks)
	wg.Wait()

	for i, ok := range started {
		if !ok {
			metrics.WarmJobsTotal.WithLabelValues("cancelled").Inc()
			results[i] = WarmResult{Source: jobs[i].Source, Err: stopErr}
		}
	}

	logging.Info("Warm-up finished: %d jobs, %d failed, %v", len(jobs), failed.Load(), time.Since(start))
	return results
}

// dispatch feeds jobs to the workers until they are all handed out or
// dispatching must stop, and returns the reason it stopped.
func dispatch(ctx context.Context, tasks chan<- warmTask, jobs []WarmJob, started []bool, gate Gate) error {
	for i, job := range jobs {
		if gate != nil && !gate.WaitIfPaused() {
			return ErrWarmStopped
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case tasks <- warmTask{index: i, job: job}:
			started[i] = true
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
