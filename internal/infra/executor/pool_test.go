package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolExecutesAllTasks(t *testing.T) {
	pool := NewPool(4, 8, 16)

	var count int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			atomic.AddInt64(&count, 1)
		})
	}
	wg.Wait()
	assert.Equal(t, int64(100), atomic.LoadInt64(&count))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pool.Shutdown(ctx))
}

func TestPoolCallerRunsWhenSaturated(t *testing.T) {
	// One worker, no overflow capacity, queue of one.
	pool := NewPool(1, 1, 1)

	block := make(chan struct{})
	started := make(chan struct{})
	pool.Submit(func() {
		close(started)
		<-block
	})
	<-started // the single worker is now occupied

	pool.Submit(func() { <-block }) // fills the queue

	// Queue full, no overflow slot: Submit must run the task inline and only
	// return once it finished.
	ran := false
	pool.Submit(func() { ran = true })
	assert.True(t, ran, "saturated Submit should execute the task on the caller")

	close(block)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pool.Shutdown(ctx))
}

func TestPoolSpawnsOverflowWorkers(t *testing.T) {
	// One core worker but room for one overflow worker.
	pool := NewPool(1, 2, 1)

	block := make(chan struct{})
	started := make(chan struct{})
	pool.Submit(func() {
		close(started)
		<-block
	})
	<-started

	pool.Submit(func() { <-block }) // queued

	// Queue full: this one must land on a fresh overflow worker, not the
	// caller, so Submit returns promptly.
	overflowRan := make(chan struct{})
	done := make(chan struct{})
	go func() {
		pool.Submit(func() { close(overflowRan) })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked although an overflow slot was free")
	}
	select {
	case <-overflowRan:
	case <-time.After(time.Second):
		t.Fatal("overflow task never executed")
	}

	close(block)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, pool.Shutdown(ctx))
}

func TestPoolShutdownDrainsQueue(t *testing.T) {
	pool := NewPool(1, 1, 32)

	var count int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		pool.Submit(func() {
			defer wg.Done()
			atomic.AddInt64(&count, 1)
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, pool.Shutdown(ctx))
	wg.Wait()
	assert.Equal(t, int64(20), atomic.LoadInt64(&count))
}
