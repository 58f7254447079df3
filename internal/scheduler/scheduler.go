// Package scheduler runs download jobs on a fixed pool of outer workers.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/utils"
)

type State string

const (
	StatePending   State = "pending"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// JobFunc transfers one job with the worker's own store and returns the bytes
// it wrote.
type JobFunc func(ctx context.Context, st store.Store, job utils.DownloadJob) (int64, error)

// Outcome is the recorded result of one job.
type Outcome struct {
	Job     utils.DownloadJob
	Bytes   int64
	Elapsed time.Duration
	Err     error
	done    bool
}

func (o Outcome) State() State {
	switch {
	case !o.done:
		return StatePending
	case o.Err != nil:
		return StateFailed
	default:
		return StateSucceeded
	}
}

// Run executes every job on min(workers, len(jobs)) workers and waits for all
// of them. Each worker builds one store through factory and reuses it for every
// job it pulls. A failed job never stops the others. Outcomes come back in job
// order.
func Run(ctx context.Context, jobs []utils.DownloadJob, workers int, factory store.Factory, fn JobFunc) []Outcome {
	outcomes := make([]Outcome, len(jobs))
	for i, job := range jobs {
		outcomes[i].Job = job
	}
	if len(jobs) == 0 {
		return outcomes
	}
	numWorkers := max(1, min(workers, len(jobs)))

	jobCh := make(chan int, len(jobs))
	for i := range jobs {
		jobCh <- i
	}
	close(jobCh)

	var wg sync.WaitGroup
	for workerID := 0; workerID < numWorkers; workerID++ {
		workerID := workerID
		wg.Add(1)
		go func() {
			defer wg.Done()
			processJobs(ctx, workerID, jobCh, jobs, outcomes, factory, fn)
		}()
	}
	wg.Wait()
	return outcomes
}

// processJobs drains jobCh for one worker. Each index is written by exactly one
// worker so outcomes needs no lock.
func processJobs(ctx context.Context, workerID int, jobCh <-chan int, jobs []utils.DownloadJob, outcomes []Outcome, factory store.Factory, fn JobFunc) {
	st, factoryErr := factory(ctx)
	if factoryErr != nil {
		log.Error().Str("op", "scheduler").Int("worker", workerID).Msgf("error creating store: %v", factoryErr)
	} else {
		defer func() {
			if err := st.Close(); err != nil {
				log.Warn().Str("op", "scheduler").Int("worker", workerID).Msgf("error closing store: %v", err)
			}
		}()
	}
	for i := range jobCh {
		job := jobs[i]
		start := time.Now()
		if factoryErr != nil {
			outcomes[i] = Outcome{Job: job, Err: factoryErr, done: true}
			continue
		}
		log.Debug().Str("op", "scheduler").Int("worker", workerID).Int("slice", job.SliceNumber).Msg("job running")
		n, err := fn(ctx, st, job)
		outcomes[i] = Outcome{Job: job, Bytes: n, Elapsed: time.Since(start), Err: err, done: true}
	}
}

// Failed returns the outcomes that ended in error.
func Failed(outcomes []Outcome) []Outcome {
	var failed []Outcome
	for _, o := range outcomes {
		if o.State() == StateFailed {
			failed = append(failed, o)
		}
	}
	return failed
}
