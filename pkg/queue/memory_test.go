package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueue(t *testing.T) {
	q := NewInMemoryQueue[int](2)
	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(2))
	assert.ErrorIs(t, q.Enqueue(3), ErrQueueFull)
	assert.Equal(t, 2, q.Size())

	assert.Equal(t, 1, <-q.Items())
	assert.Equal(t, []int{2}, q.ReadAllMessages())
	assert.Empty(t, q.ReadAllMessages())

	require.NoError(t, q.Enqueue(4))
	q.ClearQueue()
	assert.Zero(t, q.Size())
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue[string](0)
	require.NoError(t, q.Enqueue("a"))
	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Enqueue("b"), ErrQueueClosed)
	item, ok := <-q.Items()
	assert.True(t, ok)
	assert.Equal(t, "a", item)
	_, ok = <-q.Items()
	assert.False(t, ok)
}

func TestInMemoryQueue_concurrentEnqueueAndClose(t *testing.T) {
	q := NewInMemoryQueue[int](QueueBufferSize)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Enqueue(i*100 + j)
			}
		}(i)
	}
	q.Close()
	wg.Wait()
	assert.LessOrEqual(t, q.Size(), QueueBufferSize)
}
