package guess

import (
	pq "github.com/emirpasic/gods/queues/priorityqueue"
)

// Frontier is a max-priority queue of points ordered by probability.
// Points of equal probability pop in the order they were pushed.
//
// A Frontier is not safe for concurrent use.
type Frontier struct {
	queue *pq.Queue
	seq   uint64
}

type entry struct {
	point Point
	seq   uint64
}

// byProbability orders entries most probable first, then oldest first.
// Equal products, including products that underflowed to zero, fall back
// to the log-probability.
func byProbability(a, b interface{}) int {
	x, y := a.(entry), b.(entry)
	switch {
	case x.point.prob > y.point.prob:
		return -1
	case x.point.prob < y.point.prob:
		return 1
	case x.point.logp > y.point.logp:
		return -1
	case x.point.logp < y.point.logp:
		return 1
	case x.seq < y.seq:
		return -1
	case x.seq > y.seq:
		return 1
	}
	return 0
}

// NewFrontier returns an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{queue: pq.NewWith(byProbability)}
}

// Push adds p to the frontier.
func (f *Frontier) Push(p Point) {
	f.queue.Enqueue(entry{point: p, seq: f.seq})
	f.seq++
}

// Pop removes and returns the most probable point.
// It returns false if the frontier is empty.
func (f *Frontier) Pop() (Point, bool) {
	v, ok := f.queue.Dequeue()
	if !ok {
		return Point{}, false
	}
	return v.(entry).point, true
}

// Empty reports whether the frontier holds no points.
func (f *Frontier) Empty() bool { return f.queue.Empty() }

// Size returns the number of points waiting in the frontier.
func (f *Frontier) Size() int { return f.queue.Size() }
