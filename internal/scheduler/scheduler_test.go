package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanq16/slicer/internal/store"
	"github.com/tanq16/slicer/internal/store/memstore"
	"github.com/tanq16/slicer/internal/utils"
)

func makeJobs(n int) []utils.DownloadJob {
	jobs := make([]utils.DownloadJob, n)
	for i := range jobs {
		jobs[i] = utils.DownloadJob{SliceNumber: i + 1, Start: int64(i * 10), End: int64(i*10 + 9)}
	}
	return jobs
}

func countingFactory(calls *atomic.Int32) store.Factory {
	return func(context.Context) (store.Store, error) {
		calls.Add(1)
		return memstore.New(store.Options{}), nil
	}
}

func TestRun_AllSucceed(t *testing.T) {
	var factoryCalls atomic.Int32
	jobs := makeJobs(8)

	outcomes := Run(context.Background(), jobs, 3, countingFactory(&factoryCalls), func(_ context.Context, _ store.Store, job utils.DownloadJob) (int64, error) {
		return job.Length(), nil
	})

	require.Len(t, outcomes, 8)
	for i, o := range outcomes {
		assert.Equal(t, i+1, o.Job.SliceNumber)
		assert.Equal(t, StateSucceeded, o.State())
		assert.Equal(t, int64(10), o.Bytes)
	}
	assert.Equal(t, int32(3), factoryCalls.Load())
	assert.Empty(t, Failed(outcomes))
}

func TestRun_WorkersCappedByJobs(t *testing.T) {
	var factoryCalls atomic.Int32
	Run(context.Background(), makeJobs(2), 16, countingFactory(&factoryCalls), func(context.Context, store.Store, utils.DownloadJob) (int64, error) {
		return 0, nil
	})
	assert.Equal(t, int32(2), factoryCalls.Load())
}

func TestRun_StorePerWorker(t *testing.T) {
	var mu sync.Mutex
	seen := map[store.Store]int{}
	outcomes := Run(context.Background(), makeJobs(12), 4, func(context.Context) (store.Store, error) {
		return memstore.New(store.Options{}), nil
	}, func(_ context.Context, st store.Store, _ utils.DownloadJob) (int64, error) {
		mu.Lock()
		seen[st]++
		mu.Unlock()
		time.Sleep(time.Millisecond)
		return 0, nil
	})
	require.Len(t, outcomes, 12)
	assert.LessOrEqual(t, len(seen), 4)
	total := 0
	for _, n := range seen {
		total += n
	}
	assert.Equal(t, 12, total)
}

func TestRun_FailureDoesNotStopOthers(t *testing.T) {
	boom := errors.New("boom")
	outcomes := Run(context.Background(), makeJobs(4), 4, countingFactory(new(atomic.Int32)), func(_ context.Context, _ store.Store, job utils.DownloadJob) (int64, error) {
		if job.SliceNumber == 3 {
			return 4, boom
		}
		return job.Length(), nil
	})

	failed := Failed(outcomes)
	require.Len(t, failed, 1)
	assert.Equal(t, 3, failed[0].Job.SliceNumber)
	assert.ErrorIs(t, failed[0].Err, boom)
	assert.Equal(t, int64(4), failed[0].Bytes)
	for _, i := range []int{0, 1, 3} {
		assert.Equal(t, StateSucceeded, outcomes[i].State())
	}
}

func TestRun_FactoryFailureFailsEveryJob(t *testing.T) {
	boom := errors.New("no credentials")
	called := false
	outcomes := Run(context.Background(), makeJobs(5), 2, func(context.Context) (store.Store, error) {
		return nil, boom
	}, func(context.Context, store.Store, utils.DownloadJob) (int64, error) {
		called = true
		return 0, nil
	})

	assert.False(t, called)
	assert.Len(t, Failed(outcomes), 5)
	for _, o := range outcomes {
		assert.ErrorIs(t, o.Err, boom)
	}
}

func TestRun_NoJobs(t *testing.T) {
	outcomes := Run(context.Background(), nil, 4, countingFactory(new(atomic.Int32)), nil)
	assert.Empty(t, outcomes)
}

func TestOutcome_State(t *testing.T) {
	assert.Equal(t, StatePending, Outcome{}.State())
}

func TestRun_ClosesWorkerStores(t *testing.T) {
	mem := memstore.New(store.Options{})
	Run(context.Background(), makeJobs(6), 3, mem.Factory(), func(context.Context, store.Store, utils.DownloadJob) (int64, error) {
		return 0, errors.New("slice failed")
	})
	assert.Equal(t, 3, mem.Closes)
	assert.Zero(t, mem.Opened())
}
