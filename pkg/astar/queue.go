package astar

// entry is an open-set item. seq breaks f-cost ties in insertion order.
type entry struct {
	node  *node
	seq   uint64
	index int
}

// queue is a min-heap of open nodes ordered by f-cost. Stale entries for a
// cell are left in place and skipped when dequeued.
type queue struct {
	items []*entry
	next  uint64
}

func (q queue) Len() int { return len(q.items) }

func (q queue) Less(i, j int) bool {
	fi, fj := q.items[i].node.f(), q.items[j].node.f()
	if fi != fj {
		return fi < fj
	}
	return q.items[i].seq < q.items[j].seq
}

func (q queue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *queue) Push(x any) {
	e := &entry{node: x.(*node), seq: q.next, index: len(q.items)}
	q.next++
	q.items = append(q.items, e)
}

func (q *queue) Pop() any {
	old := q.items
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	q.items = old[:n-1]
	return e
}
