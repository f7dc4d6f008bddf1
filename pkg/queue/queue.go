package queue

import "errors"

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// Queue is a bounded FIFO that never blocks the producer.
type Queue[T any] interface {
	Enqueue(item T) error
	Items() <-chan T
	Size() int
	ReadAllMessages() []T
	ClearQueue()
	Close()
}
