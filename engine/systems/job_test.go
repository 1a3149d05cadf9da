package systems

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/lumina/engine/renderer/metadata"
)

func TestNewJobSystemValidation(t *testing.T) {
	_, err := NewJobSystem(0, 4)
	assert.ErrorIs(t, err, ErrNoWorkers)

	_, err = NewJobSystem(-1, 4)
	assert.ErrorIs(t, err, ErrNoWorkers)

	_, err = NewJobSystem(2, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobCompletionPath(t *testing.T) {
	js, err := NewJobSystem(2, 4)
	require.NoError(t, err)

	results := make(chan string, 1)
	done := make(chan struct{})
	js.Submit(metadata.JobTask{
		JobType:     metadata.JOB_TYPE_GENERAL,
		Priority:    metadata.JOB_PRIORITY_NORMAL,
		InputParams: []interface{}{"payload"},
		OnStart: func(params interface{}, resultChan chan<- interface{}) error {
			in := params.([]interface{})
			resultChan <- in[0].(string) + ":done"
			return nil
		},
		OnComplete: func(resultChan <-chan interface{}) {
			results <- (<-resultChan).(string)
		},
		OnFailure: func(resultChan <-chan interface{}) {
			t.Error("failure callback fired for a successful job")
		},
		OnCompletionCallback: func() { close(done) },
	})

	select {
	case got := <-results:
		assert.Equal(t, "payload:done", got)
	case <-time.After(2 * time.Second):
		t.Fatal("job never completed")
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("completion callback never fired")
	}

	require.NoError(t, js.Shutdown())
}

func TestJobFailurePath(t *testing.T) {
	js, err := NewJobSystem(1, 1)
	require.NoError(t, err)

	failed := make(chan struct{})
	js.Submit(metadata.JobTask{
		InputParams: []interface{}{"payload"},
		OnStart: func(params interface{}, resultChan chan<- interface{}) error {
			resultChan <- params
			return errors.New("decode failed")
		},
		OnComplete: func(resultChan <-chan interface{}) {
			t.Error("completion callback fired for a failed job")
		},
		OnFailure: func(resultChan <-chan interface{}) {
			<-resultChan
			close(failed)
		},
	})

	select {
	case <-failed:
	case <-time.After(2 * time.Second):
		t.Fatal("failure callback never fired")
	}

	require.NoError(t, js.Shutdown())
}

func TestShutdownDrainsQueuedJobs(t *testing.T) {
	js, err := NewJobSystem(4, 16)
	require.NoError(t, err)

	var ran atomic.Int32
	for i := 0; i < 16; i++ {
		js.Submit(metadata.JobTask{
			OnStart: func(params interface{}, resultChan chan<- interface{}) error {
				ran.Add(1)
				return nil
			},
		})
	}

	require.NoError(t, js.Shutdown())
	assert.Equal(t, int32(16), ran.Load())
}

func TestAddWorkNonBlocking(t *testing.T) {
	js, err := NewJobSystem(1, 0)
	require.NoError(t, err)

	done := make(chan struct{})
	js.AddWorkNonBlocking(metadata.JobTask{
		OnStart: func(params interface{}, resultChan chan<- interface{}) error {
			return nil
		},
		OnCompletionCallback: func() { close(done) },
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("asynchronously submitted job never ran")
	}

	require.NoError(t, js.Shutdown())
}
