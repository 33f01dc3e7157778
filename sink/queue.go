// SPDX-License-Identifier: EPL-2.0

package sink

import "sync"

// queue is a bounded ring of interleaved samples between a writer and the
// audio callback. It only ever holds whole frames.
type queue struct {
	mtx      sync.Mutex
	buf      []float32
	head     int
	size     int
	channels int

	// room receives a token whenever pop frees space
	room chan struct{}
}

func newQueue(frames, channels int) *queue {
	return &queue{
		buf:      make([]float32, max(frames, 1)*channels),
		channels: channels,
		room:     make(chan struct{}, 1),
	}
}

// push copies as many whole frames of src as fit and returns the number of
// samples taken.
func (q *queue) push(src []float32) int {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	free := len(q.buf) - q.size
	n := min(len(src), free)
	n -= n % q.channels

	tail := (q.head + q.size) % len(q.buf)
	first := copy(q.buf[tail:], src[:n])
	copy(q.buf, src[first:n])
	q.size += n

	return n
}

// pop moves up to len(dst) samples, rounded down to whole frames, into dst.
func (q *queue) pop(dst []float32) int {
	q.mtx.Lock()
	n := min(len(dst), q.size)
	n -= n % q.channels

	first := copy(dst[:n], q.buf[q.head:min(q.head+n, len(q.buf))])
	copy(dst[first:n], q.buf)
	q.head = (q.head + n) % len(q.buf)
	q.size -= n
	q.mtx.Unlock()

	if n > 0 {
		q.signal()
	}
	return n
}

func (q *queue) clear() {
	q.mtx.Lock()
	q.head, q.size = 0, 0
	q.mtx.Unlock()

	q.signal()
}

func (q *queue) len() int {
	q.mtx.Lock()
	defer q.mtx.Unlock()

	return q.size
}

func (q *queue) signal() {
	select {
	case q.room <- struct{}{}:
	default:
	}
}
