package gate

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync/atomic"
	"testing"
	"time"
)

func passed(g *Gate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		g.PassThrough()
		close(done)
	}()
	return done
}

func TestGate_OpenByDefault(t *testing.T) {
	g := New()
	assert.True(t, g.IsOpen())

	select {
	case <-passed(g):
	case <-time.After(time.Second):
		t.Fatal("open gate must not block")
	}
}

func TestGate_CloseIsIdempotent(t *testing.T) {
	g := New()
	g.Close()
	g.Close()
	assert.False(t, g.IsOpen())

	done := passed(g)
	select {
	case <-done:
		t.Fatal("closed gate must block")
	case <-time.After(50 * time.Millisecond):
	}

	g.Open()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("a single Open must release a gate closed twice")
	}
}

func TestGate_OpenIsIdempotent(t *testing.T) {
	g := New()
	g.Close()
	g.Open()
	assert.NotPanics(t, g.Open)
	assert.True(t, g.IsOpen())
}

func TestGate_WakesAllWaiters(t *testing.T) {
	g := New()
	g.Close()

	var woke atomic.Int32
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		go func() {
			g.PassThrough()
			if woke.Add(1) == 5 {
				close(done)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), woke.Load())

	g.Open()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("only %d waiters woke", woke.Load())
	}
}

// The worker closes the gate when marking itself non-runnable and then passes
// through it to block; it must be woken by another goroutine's Open.
func TestGate_SameGoroutineCloseThenPassThrough(t *testing.T) {
	g := New()
	step := make(chan string, 4)

	go func() {
		g.Close()
		g.PassThrough()
		step <- "first"
		g.Close()
		g.Close()
		g.PassThrough()
		step <- "second"
	}()

	time.Sleep(30 * time.Millisecond)
	assert.Len(t, step, 0)

	g.Open()
	require.Equal(t, "first", <-step)

	time.Sleep(30 * time.Millisecond)
	assert.Len(t, step, 0)

	g.Open()
	select {
	case s := <-step:
		assert.Equal(t, "second", s)
	case <-time.After(time.Second):
		t.Fatal("second pass-through was not woken")
	}
}

func TestGate_ReclosedBeforeWaiterRuns(t *testing.T) {
	g := New()
	g.Close()
	done := passed(g)

	time.Sleep(10 * time.Millisecond)
	g.Open()
	g.Close()

	// the waiter either passed during the short open window or waits again;
	// a final Open always releases it.
	g.Open()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter missed the wakeup")
	}
}

func TestGate_WaitHonoursContext(t *testing.T) {
	g := New()
	g.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := g.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, g.IsOpen())
}
