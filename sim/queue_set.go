package sim

// QueueSet joins several queues behind a single "next due" view.
// The first queue added is the main queue.
type QueueSet struct {
	queues []*Queue
}

// Add appends q to the set. Nil queues are ignored.
func (qs *QueueSet) Add(q *Queue) {
	if q == nil {
		return
	}
	qs.queues = append(qs.queues, q)
}

// Main returns the first queue of the set, or nil if the set is empty.
func (qs *QueueSet) Main() *Queue {
	if len(qs.queues) == 0 {
		return nil
	}
	return qs.queues[0]
}

// Queues returns the member queues in set order.
func (qs *QueueSet) Queues() []*Queue {
	out := make([]*Queue, len(qs.queues))
	copy(out, qs.queues)
	return out
}

// Len returns the number of member queues.
func (qs *QueueSet) Len() int {
	return len(qs.queues)
}

// Top returns the soonest-due entry across all member queues together with the queue
// holding it. Ties on fire time resolve to the earliest member in set order.
func (qs *QueueSet) Top() (Entry, *Queue, bool) {
	var (
		best     Entry
		bestQ    *Queue
		foundAny bool
	)
	for _, q := range qs.queues {
		e, ok := q.Peek()
		if !ok {
			continue
		}
		if !foundAny || e.At < best.At {
			best, bestQ, foundAny = e, q, true
		}
	}
	return best, bestQ, foundAny
}

// Pop removes the entry Top would return from its owning queue only.
func (qs *QueueSet) Pop() (Entry, *Queue, bool) {
	_, q, ok := qs.Top()
	if !ok {
		return Entry{}, nil, false
	}
	e, _ := q.Pop()
	return e, q, true
}

// AllEmpty returns true if every member queue is empty (or there are none).
func (qs *QueueSet) AllEmpty() bool {
	for _, q := range qs.queues {
		if !q.IsEmpty() {
			return false
		}
	}
	return true
}
