package parallel

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	q := NewQueue[int]()
	for i := 1; i <= 3; i++ {
		q.Push(i)
	}
	assert.Equal(t, 3, q.Len())

	for want := 1; want <= 3; want++ {
		got, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	assert.Equal(t, 0, q.Len())
}

func TestQueue_PopBlocksUntilPush(t *testing.T) {
	q := NewQueue[string]()
	result := make(chan string)

	go func() {
		v, _ := q.Pop()
		result <- v
	}()

	select {
	case <-result:
		t.Fatal("Pop returned before any Push")
	case <-time.After(20 * time.Millisecond):
	}

	q.Push("x")
	assert.Equal(t, "x", <-result)
}

func TestQueue_StopWakesAllConsumers(t *testing.T) {
	q := NewQueue[int]()

	const consumers = 4
	var wg sync.WaitGroup
	results := make(chan bool, consumers)
	for i := 0; i < consumers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := q.Pop()
			results <- ok
		}()
	}

	q.Stop()
	q.Stop()
	wg.Wait()
	close(results)

	for ok := range results {
		assert.False(t, ok)
	}
	assert.True(t, q.Stopped())
}

func TestQueue_StoppedPopLeavesItems(t *testing.T) {
	q := NewQueue[int]()
	q.Push(1)
	q.Push(2)
	q.Stop()

	_, ok := q.Pop()
	assert.False(t, ok)
	assert.Equal(t, 2, q.Len())

	assert.Equal(t, []int{1, 2}, q.Drain())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_Restart(t *testing.T) {
	q := NewQueue[int]()
	q.Stop()
	q.Restart()
	assert.False(t, q.Stopped())

	q.Push(7)
	v, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 7, v)
}
