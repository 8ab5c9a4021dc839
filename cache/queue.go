package cache

// lineQueue is a fixed-capacity ring of line indices.
type lineQueue struct {
	buf  []int
	head int
	size int
}

func newLineQueue(capacity int) lineQueue {
	return lineQueue{buf: make([]int, capacity)}
}

func (q *lineQueue) Len() int {
	return q.size
}

// At returns the i-th element counted from the front.
func (q *lineQueue) At(i int) int {
	return q.buf[(q.head+i)%len(q.buf)]
}

func (q *lineQueue) PushBack(line int) {
	if q.size == len(q.buf) {
		panic("cache: push to a full line queue")
	}

	q.buf[(q.head+q.size)%len(q.buf)] = line
	q.size++
}

func (q *lineQueue) PopFront() int {
	if q.size == 0 {
		panic("cache: pop from an empty line queue")
	}

	line := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.size--

	return line
}

func (q *lineQueue) clear() {
	q.head = 0
	q.size = 0
}
