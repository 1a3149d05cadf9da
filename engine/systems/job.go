package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/lumina/engine/core"
	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

var ErrNoWorkers = fmt.Errorf("attempting to create worker pool with less than 1 worker")
var ErrNegativeChannelSize = fmt.Errorf("attempting to create worker pool with a negative channel size")

/**
 * @brief A fixed pool of worker goroutines draining a shared job queue.
 * Resource decodes and other off-frame work run here; preparation itself
 * never blocks on a job, it just sees the result as resident on a later
 * frame.
 */
type JobSystem struct {
	numWorkers int
	jobQueue   chan metadata.JobTask
	wg         sync.WaitGroup
}

func NewJobSystem(numWorkers int, channelSize int) (*JobSystem, error) {
	if numWorkers <= 0 {
		return nil, ErrNoWorkers
	}
	if channelSize < 0 {
		return nil, ErrNegativeChannelSize
	}

	js := &JobSystem{
		numWorkers: numWorkers,
		jobQueue:   make(chan metadata.JobTask, channelSize),
	}
	for i := 0; i < numWorkers; i++ {
		js.wg.Add(1)
		go js.work()
	}
	return js, nil
}

func (js *JobSystem) work() {
	defer js.wg.Done()
	for job := range js.jobQueue {
		js.run(job)
	}
}

// The result channel is buffered and closed once OnStart returns, so a
// completion callback may drain it with a plain range.
func (js *JobSystem) run(job metadata.JobTask) {
	resultChan := make(chan interface{}, 1)
	err := job.OnStart(job.InputParams, resultChan)
	close(resultChan)

	if err != nil {
		core.LogError("job failed: %s", err.Error())
		if job.OnFailure != nil {
			job.OnFailure(resultChan)
		}
	} else if job.OnComplete != nil {
		job.OnComplete(resultChan)
	}

	if job.OnCompletionCallback != nil {
		job.OnCompletionCallback()
	}
}

/**
 * @brief Queues the job for execution, blocking while the queue is full.
 */
func (js *JobSystem) Submit(jt metadata.JobTask) {
	js.jobQueue <- jt
}

/** @brief Queues the job without ever blocking the caller. */
func (js *JobSystem) AddWorkNonBlocking(jt metadata.JobTask) {
	go js.Submit(jt)
}

/**
 * @brief Stops accepting jobs and waits for the in-flight ones to finish.
 */
func (js *JobSystem) Shutdown() error {
	close(js.jobQueue)
	js.wg.Wait()
	return nil
}
