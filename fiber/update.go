package fiber

import "sync"

// Priority of a scheduled update.
type Priority uint8

const (
	// PriorityNormal updates that arrive while a pass is in flight are merged
	// into the next pass.
	PriorityNormal Priority = iota
	// PriorityHigh updates preempt an interruptible pass: its work is thrown
	// away and rendering restarts from the root with the update folded in.
	PriorityHigh
)

type stateUpdate struct {
	seq   uint64
	id    ID
	key   string
	apply func(prev any) any
}

// updateQueue holds the updates that have not been committed yet. It has its
// own lock so components and event handlers can enqueue while a pass holds
// the root.
type updateQueue struct {
	mu      sync.Mutex
	seq     uint64
	element *Element
	states  []stateUpdate
	preempt bool
}

func (q *updateQueue) setElement(el *Element, p Priority) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	q.element = el
	if p == PriorityHigh {
		q.preempt = true
	}
	return q.seq
}

func (q *updateQueue) addState(u stateUpdate) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	u.seq = q.seq
	q.states = append(q.states, u)
}

// snapshot returns what a new pass renders: the latest element and the
// sequence number of the newest update it includes.
func (q *updateQueue) snapshot() (*Element, uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.preempt = false
	return q.element, q.seq
}

func (q *updateQueue) latest() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.seq
}

func (q *updateQueue) takePreempt() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	p := q.preempt
	q.preempt = false
	return p
}

// statesFor returns, in enqueue order, the state updates for id included in a
// pass that snapshotted seq.
func (q *updateQueue) statesFor(id ID, seq uint64) []stateUpdate {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []stateUpdate
	for _, u := range q.states {
		if u.id == id && u.seq <= seq {
			out = append(out, u)
		}
	}
	return out
}

// ack drops the state updates a committed pass consumed.
func (q *updateQueue) ack(seq uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.states[:0]
	for _, u := range q.states {
		if u.seq > seq {
			kept = append(kept, u)
		}
	}
	q.states = kept
}

// forget drops state updates addressed to nodes that no longer exist.
func (q *updateQueue) forget(ids []ID) {
	if len(ids) == 0 {
		return
	}
	gone := make(map[ID]struct{}, len(ids))
	for _, id := range ids {
		gone[id] = struct{}{}
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	kept := q.states[:0]
	for _, u := range q.states {
		if _, ok := gone[u.id]; !ok {
			kept = append(kept, u)
		}
	}
	q.states = kept
}
