package queue

// Item is a queued value with its priority.
type Item[T any] struct {
	Value    T
	Priority float64
}

// PriorityQueue is a binary heap of Items ordered by Priority.
// Value-based storage; the zero value is an empty min-heap.
type PriorityQueue[T any] struct {
	isMaxHeap bool
	items     []Item[T]
}

// NewMin initializes a new priority queue that pops the smallest priority first.
func NewMin[T any](capacity int) *PriorityQueue[T] {
	return &PriorityQueue[T]{
		isMaxHeap: false,
		items:     make([]Item[T], 0, capacity),
	}
}

// NewMax initializes a new priority queue that pops the largest priority first.
func NewMax[T any](capacity int) *PriorityQueue[T] {
	return &PriorityQueue[T]{
		isMaxHeap: true,
		items:     make([]Item[T], 0, capacity),
	}
}

// Len returns the number of elements in the priority queue.
func (pq *PriorityQueue[T]) Len() int { return len(pq.items) }

// Top returns the top element of the heap.
func (pq *PriorityQueue[T]) Top() (Item[T], bool) {
	if len(pq.items) == 0 {
		return Item[T]{}, false
	}
	return pq.items[0], true
}

// Push inserts an item while maintaining the heap invariant.
func (pq *PriorityQueue[T]) Push(value T, priority float64) {
	pq.items = append(pq.items, Item[T]{Value: value, Priority: priority})
	pq.siftUp(len(pq.items) - 1)
}

// Pop removes and returns the top element while maintaining the heap invariant.
func (pq *PriorityQueue[T]) Pop() (Item[T], bool) {
	n := len(pq.items)
	if n == 0 {
		return Item[T]{}, false
	}
	root := pq.items[0]
	last := pq.items[n-1]
	pq.items[n-1] = Item[T]{} // release references held by T
	pq.items = pq.items[:n-1]
	if n-1 > 0 {
		pq.items[0] = last
		pq.siftDown(0)
	}
	return root, true
}

// Reset clears the priority queue for reuse.
func (pq *PriorityQueue[T]) Reset() {
	clear(pq.items)
	pq.items = pq.items[:0]
}

func (pq *PriorityQueue[T]) less(i, j int) bool {
	if pq.isMaxHeap {
		return pq.items[i].Priority > pq.items[j].Priority
	}
	return pq.items[i].Priority < pq.items[j].Priority
}

func (pq *PriorityQueue[T]) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !pq.less(i, p) {
			return
		}
		pq.items[i], pq.items[p] = pq.items[p], pq.items[i]
		i = p
	}
}

func (pq *PriorityQueue[T]) siftDown(i int) {
	n := len(pq.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && pq.less(r, l) {
			best = r
		}
		if !pq.less(best, i) {
			return
		}
		pq.items[i], pq.items[best] = pq.items[best], pq.items[i]
		i = best
	}
}
