// queue package

package queue

import "sync"

const (
	// QueueBufferSize is the default capacity of a queue
	QueueBufferSize = 256
)

// InMemoryQueue implements an in-memory queue.
type InMemoryQueue[T any] struct {
	ch     chan T
	lock   sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new queue. A size of 0 or less uses
// QueueBufferSize.
func NewInMemoryQueue[T any](size int) *InMemoryQueue[T] {
	if size <= 0 {
		size = QueueBufferSize
	}
	return &InMemoryQueue[T]{
		ch: make(chan T, size),
	}
}

// Enqueue adds an item to the end of the queue, failing instead of waiting
// when the queue is full.
func (q *InMemoryQueue[T]) Enqueue(item T) error {
	q.lock.RLock()
	defer q.lock.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.ch <- item:
		return nil
	default:
		return ErrQueueFull
	}
}

// Items is closed once the queue is closed and drained.
func (q *InMemoryQueue[T]) Items() <-chan T {
	return q.ch
}

// Size returns the current size of the queue.
func (q *InMemoryQueue[T]) Size() int {
	return len(q.ch)
}

// ReadAllMessages reads all pending messages in the queue
func (q *InMemoryQueue[T]) ReadAllMessages() []T {
	var messages []T
	for {
		select {
		case m, ok := <-q.ch:
			if !ok {
				return messages
			}
			messages = append(messages, m)
		default:
			return messages
		}
	}
}

// ClearQueue clears all messages from the queue.
func (q *InMemoryQueue[T]) ClearQueue() {
	q.ReadAllMessages()
}

// Close stops further enqueues. Items already queued can still be read.
func (q *InMemoryQueue[T]) Close() {
	q.lock.Lock()
	defer q.lock.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}
