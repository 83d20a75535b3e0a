package executor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInline_RunsOnCaller(t *testing.T) {
	ran := false
	require.NoError(t, Inline{}.Submit(func() { ran = true }))
	assert.True(t, ran)
	assert.ErrorIs(t, Inline{}.Submit(nil), ErrTaskNil)
}

func TestFunc_Adapter(t *testing.T) {
	var got []int
	exec := Func(func(task func()) error {
		got = append(got, 1)
		task()
		return nil
	})
	require.NoError(t, exec.Submit(func() { got = append(got, 2) }))
	assert.Equal(t, []int{1, 2}, got)
}

func TestLoop_FIFO(t *testing.T) {
	l := NewLoop(LoopConfig{Name: "fifo", QueueSize: 128})
	l.Start(context.Background())

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		require.NoError(t, l.Submit(func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}
	wg.Wait()
	require.NoError(t, l.Close())

	require.Len(t, order, 100)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
	assert.Zero(t, l.Pending())
}

func TestLoop_SubmitAfterClose(t *testing.T) {
	l := NewLoop(LoopConfig{})
	l.Start(context.Background())
	require.NoError(t, l.Close())

	assert.True(t, l.IsClosed())
	assert.ErrorIs(t, l.Submit(func() {}), ErrLoopClosed)
	assert.ErrorIs(t, l.Close(), ErrLoopClosed)
	assert.ErrorIs(t, l.Submit(nil), ErrTaskNil)
}

func TestLoop_CloseDrainsQueued(t *testing.T) {
	// never started: Close runs the queue on the caller
	l := NewLoop(LoopConfig{QueueSize: 8})
	count := 0
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Submit(func() { count++ }))
	}
	assert.EqualValues(t, 5, l.Pending())
	require.NoError(t, l.Close())
	assert.Equal(t, 5, count)
}

func TestLoop_QueueFull(t *testing.T) {
	l := NewLoop(LoopConfig{Name: "tiny", QueueSize: 1})
	require.NoError(t, l.Submit(func() {}))

	err := l.Submit(func() {})
	assert.True(t, errors.Is(err, ErrQueueFull))
	assert.EqualValues(t, 1, l.Pending())
	require.NoError(t, l.Close())
}

func TestLoop_PanicIsRecovered(t *testing.T) {
	l := NewLoop(LoopConfig{Name: "panics"})
	l.Start(context.Background())

	done := make(chan struct{})
	require.NoError(t, l.Submit(func() { panic("listener failure") }))
	require.NoError(t, l.Submit(func() { close(done) }))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop stopped after a task panic")
	}
	require.NoError(t, l.Close())
}

func TestLoop_ContextCancelStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	l := NewLoop(LoopConfig{Name: "ctx"})
	l.Start(ctx)
	cancel()

	assert.Eventually(t, l.IsClosed, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, l.Submit(func() {}), ErrLoopClosed)
}

func TestLoop_BlockingSubmitUnblocksOnClose(t *testing.T) {
	l := NewLoop(LoopConfig{QueueSize: 1, Block: true})
	require.NoError(t, l.Submit(func() {}))

	errCh := make(chan error, 1)
	go func() { errCh <- l.Submit(func() {}) }()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, l.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrLoopClosed)
	case <-time.After(time.Second):
		t.Fatal("blocked submit did not return after close")
	}
}

func TestGroup_PickIsStable(t *testing.T) {
	g := NewGroup(context.Background(), 4, LoopConfig{Name: "owners"})
	assert.Equal(t, 4, g.Len())

	a := g.Pick("owner-a")
	assert.Same(t, a, g.Pick("owner-a"))

	done := make(chan struct{})
	require.NoError(t, a.Submit(func() { close(done) }))
	<-done
	require.NoError(t, g.Submit(func() {}))

	require.NoError(t, g.Close())
	err := g.Close()
	assert.ErrorIs(t, err, ErrLoopClosed)
}
