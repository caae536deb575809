package queue_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritahmida/boutique/pkg/queue"
)

// Counters are package-level so the worker-side instances built by the
// registered factories report into the same place as the test.
var (
	confirmations atomic.Int32
	exportTries   atomic.Int32
)

type confirmOrderJob struct {
	OrderID uint `json:"order_id"`
}

func (j *confirmOrderJob) Handle() error {
	confirmations.Add(1)
	return nil
}

type exportOrdersJob struct{}

func (j *exportOrdersJob) Handle() error {
	exportTries.Add(1)
	return errors.New("bucket unreachable")
}

func init() {
	queue.Register("*queue_test.confirmOrderJob", func() queue.Job { return &confirmOrderJob{} })
	queue.Register("*queue_test.exportOrdersJob", func() queue.Job { return &exportOrdersJob{} })
	queue.StartWorkers(context.Background(), 2)
}

func TestDispatchRunsJob(t *testing.T) {
	before := confirmations.Load()

	require.NoError(t, queue.Dispatch(&confirmOrderJob{OrderID: 7}))

	require.Eventually(t, func() bool {
		return confirmations.Load() > before
	}, 2*time.Second, 10*time.Millisecond, "job never ran")
}

func TestFailingJobLandsInFailedJobs(t *testing.T) {
	queue.SetMaxRetry(1)
	defer queue.SetMaxRetry(3)

	before := len(queue.FailedJobs())
	require.NoError(t, queue.Dispatch(&exportOrdersJob{}))

	// One attempt plus the 1s backoff.
	require.Eventually(t, func() bool {
		return len(queue.FailedJobs()) > before
	}, 5*time.Second, 50*time.Millisecond, "job never reached the failed list")

	assert.Positive(t, exportTries.Load())
}

func TestDispatchConcurrent(t *testing.T) {
	before := confirmations.Load()

	var wg sync.WaitGroup
	wg.Add(20)
	for i := 0; i < 20; i++ {
		go func(id uint) {
			defer wg.Done()
			_ = queue.Dispatch(&confirmOrderJob{OrderID: id})
		}(uint(i))
	}
	wg.Wait()

	require.Eventually(t, func() bool {
		return confirmations.Load() >= before+20
	}, 5*time.Second, 10*time.Millisecond)
}
