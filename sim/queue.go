// Implements the Queue, the time-ordered calendar that schedulable objects are placed on.
// Queues hold identities only; the Simulation owns the objects themselves.

package sim

import (
	"container/heap"
	"fmt"
	"strings"
)

// Entry is a single scheduled slot in a Queue.
type Entry struct {
	ID  ObjectID // scheduled object
	At  int64    // fire time (in ticks)
	seq uint64   // insertion order, breaks ties between equal fire times
}

// entryHeap implements heap.Interface and orders entries by fire time, then insertion order.
// See canonical Golang example here: https://pkg.go.dev/container/heap#example-package-IntHeap
type entryHeap []Entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].At != h[j].At {
		return h[i].At < h[j].At
	}
	return h[i].seq < h[j].seq
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(Entry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// Queue is a min-heap of scheduled objects ordered by fire time.
// Objects sharing a fire time pop in the order they were pushed.
type Queue struct {
	name    string
	entries entryHeap
	nextSeq uint64

	// owner is set when the queue is attached to a Simulation; only its
	// objects may be scheduled here.
	owner *Simulation
}

// NewQueue creates an empty queue. The name is only used in logs.
func NewQueue(name string) *Queue {
	q := &Queue{
		name:    name,
		entries: make(entryHeap, 0),
	}
	heap.Init(&q.entries)
	return q
}

// Owner returns the Simulation the queue is attached to, or nil.
func (q *Queue) Owner() *Simulation {
	return q.owner
}

// Name returns the queue name given at construction.
func (q *Queue) Name() string {
	return q.name
}

// Push schedules id at the given fire time.
func (q *Queue) Push(id ObjectID, at int64) {
	q.nextSeq++
	heap.Push(&q.entries, Entry{ID: id, At: at, seq: q.nextSeq})
}

// Peek returns the soonest-due entry without removing it.
func (q *Queue) Peek() (Entry, bool) {
	if len(q.entries) == 0 {
		return Entry{}, false
	}
	return q.entries[0], true
}

// Pop removes and returns the soonest-due entry.
func (q *Queue) Pop() (Entry, bool) {
	if len(q.entries) == 0 {
		return Entry{}, false
	}
	return heap.Pop(&q.entries).(Entry), true
}

// Remove drops the entry scheduled for id. Identity is not the ordering key,
// so the entry is located by a linear scan and then removed at its heap index.
// Returns false, leaving the queue untouched, when id is not present.
func (q *Queue) Remove(id ObjectID) bool {
	idx := q.indexOf(id)
	if idx < 0 {
		return false
	}
	heap.Remove(&q.entries, idx)
	return true
}

// Contains reports whether id is scheduled in this queue.
func (q *Queue) Contains(id ObjectID) bool {
	return q.indexOf(id) >= 0
}

func (q *Queue) indexOf(id ObjectID) int {
	for i, e := range q.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Len returns the number of scheduled entries.
func (q *Queue) Len() int {
	return len(q.entries)
}

// IsEmpty returns true if nothing is scheduled.
func (q *Queue) IsEmpty() bool {
	return len(q.entries) == 0
}

// Entries returns a copy of the queue contents in heap order (for inspection/debugging).
func (q *Queue) Entries() []Entry {
	out := make([]Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

func (q *Queue) String() string {
	var sb strings.Builder
	sb.WriteString(q.name)
	sb.WriteString("[")
	for i, e := range q.entries {
		sb.WriteString(fmt.Sprintf("%d@%d", e.ID, e.At))
		if i < len(q.entries)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
