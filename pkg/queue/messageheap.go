package queue

// Message is a queued value and the priority it was sent with
type Message[T any] struct {
	Priority int
	Value    T

	// seq keeps messages of the same priority in the order they were sent
	seq uint64
}

// messageHeap is the container/heap backing store of a PriorityQueue
type messageHeap[T any] []*Message[T]

func (h messageHeap[T]) Len() int { return len(h) }

// Less puts higher priorities first and falls back to send order
func (h messageHeap[T]) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}

	return h[i].seq < h[j].seq
}

func (h messageHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *messageHeap[T]) Push(msg any) {
	*h = append(*h, msg.(*Message[T]))
}

func (h *messageHeap[T]) Pop() any {
	old := *h
	last := len(old) - 1
	msg := old[last]
	old[last] = nil
	*h = old[:last]

	return msg
}
