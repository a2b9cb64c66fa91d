package pathfind

import "pursuit/grid"

type queueItem struct {
	pos    grid.Position
	gScore float64
	fCost  float64
	seq    int
	index  int
}

// priorityQueue orders by fCost, then by insertion order so equal-cost nodes
// are expanded deterministically.
type priorityQueue []*queueItem

func (q priorityQueue) Len() int { return len(q) }
func (q priorityQueue) Less(i, j int) bool {
	if q[i].fCost != q[j].fCost {
		return q[i].fCost < q[j].fCost
	}
	return q[i].seq < q[j].seq
}
func (q priorityQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *priorityQueue) Push(x any) {
	it := x.(*queueItem)
	it.index = len(*q)
	*q = append(*q, it)
}

func (q *priorityQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*q = old[:n-1]
	return it
}
