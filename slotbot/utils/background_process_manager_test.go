package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackgroundProcessManager_Shutdown(t *testing.T) {
	bpm := NewBackgroundProcessManager()

	stopped := make(chan string, 2)
	for _, name := range []string{"slot-expiry-sweep", "slot-reminder-sweep"} {
		bpm.StartProcess(name, "test loop", func(ctx context.Context) {
			<-ctx.Done()
			stopped <- name
		})
	}

	require.Eventually(t, func() bool { return bpm.GetProcessCount() == 2 }, time.Second, 5*time.Millisecond)
	procs := bpm.ListProcesses()
	assert.Equal(t, "slot-expiry-sweep", procs[0].Name)
	assert.Equal(t, "slot-reminder-sweep", procs[1].Name)

	require.NoError(t, bpm.Shutdown(time.Second))
	assert.Len(t, stopped, 2)
}

func TestBackgroundProcessManager_RestartReplaces(t *testing.T) {
	bpm := NewBackgroundProcessManager()
	defer bpm.Shutdown(time.Second)

	firstDone := make(chan struct{})
	bpm.StartProcess("sweep", "first", func(ctx context.Context) {
		<-ctx.Done()
		close(firstDone)
	})
	bpm.StartProcess("sweep", "second", func(ctx context.Context) {
		<-ctx.Done()
	})

	select {
	case <-firstDone:
	case <-time.After(time.Second):
		t.Fatal("first process was not cancelled")
	}
	assert.Equal(t, 1, bpm.GetProcessCount())
}

func TestBackgroundProcessManager_RecoversPanics(t *testing.T) {
	bpm := NewBackgroundProcessManager()
	bpm.StartProcess("boom", "panics", func(context.Context) {
		panic("boom")
	})

	require.Eventually(t, func() bool { return bpm.GetProcessCount() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, bpm.Shutdown(time.Second))
}

func TestBackgroundProcessManager_ShutdownTimeout(t *testing.T) {
	bpm := NewBackgroundProcessManager()
	release := make(chan struct{})
	defer close(release)

	bpm.StartProcess("stuck", "ignores cancellation", func(context.Context) {
		<-release
	})

	err := bpm.Shutdown(20 * time.Millisecond)
	require.ErrorIs(t, err, ErrShutdownTimeout)
	assert.Equal(t, 1, bpm.GetProcessCount())
}
