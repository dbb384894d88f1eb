package queue

import (
	"container/heap"
	"sync"
)

// PriorityQueue is like a channel but with dynamic buffering and returns items
// with the highest priority first. Items with the same priority come out in
// the order they were sent.
type PriorityQueue[T any] struct {
	heap   *messageHeap[T]
	cond   *sync.Cond
	closed bool
	seq    uint64
}

// NewPriorityQueue returns a PriorityQueue instance that is ready to send to
func NewPriorityQueue[T any](queueSize int) *PriorityQueue[T] {
	messages := make(messageHeap[T], 0, max(queueSize, 0))

	return &PriorityQueue[T]{
		heap: &messages,
		cond: sync.NewCond(&sync.Mutex{}),
	}
}

// Send puts items on the queue. Like a channel, sending on a closed queue
// panics.
func (pq *PriorityQueue[T]) Send(msg *Message[T]) {
	pq.cond.L.Lock()
	defer pq.cond.L.Unlock()

	if pq.closed {
		panic("send on closed queue")
	}

	msg.seq = pq.seq
	pq.seq++
	heap.Push(pq.heap, msg)
	pq.cond.Signal()
}

// Close stops the queue from taking new messages. Receivers still get what
// is left on the queue before returning.
func (pq *PriorityQueue[T]) Close() {
	pq.cond.L.Lock()
	defer pq.cond.L.Unlock()

	pq.closed = true
	pq.cond.Broadcast()
}

// Len returns the number of messages waiting on the queue
func (pq *PriorityQueue[T]) Len() int {
	pq.cond.L.Lock()
	defer pq.cond.L.Unlock()

	return pq.heap.Len()
}

// Recv takes a function that can recieve messages sent to the queue. It
// blocks until the queue is closed and drained. Several goroutines may call
// Recv on the same queue.
func (pq *PriorityQueue[T]) Recv(fn func(*Message[T])) {
	for {
		msg, ok := pq.next()
		if !ok {
			return
		}

		fn(msg)
	}
}

func (pq *PriorityQueue[T]) next() (*Message[T], bool) {
	pq.cond.L.Lock()
	defer pq.cond.L.Unlock()

	for pq.heap.Len() == 0 && !pq.closed {
		pq.cond.Wait()
	}

	if pq.heap.Len() == 0 {
		return nil, false
	}

	return heap.Pop(pq.heap).(*Message[T]), true
}
