package fiber

import mapset "github.com/deckarep/golang-set/v2"

type slot struct {
	current *Node
	wip     *Node
}

// Arena owns every node version of a Root, keyed by the stable ID shared by a
// node and its alternate.
type Arena struct {
	nextID ID
	slots  map[ID]*slot
}

func NewArena() *Arena {
	return &Arena{slots: map[ID]*slot{}}
}

// CreateNode allocates a node with a fresh identity and no alternate.
func (a *Arena) CreateNode(kind Kind, typ, key string, props Props) *Node {
	a.nextID++
	n := &Node{
		id:           a.nextID,
		kind:         kind,
		typ:          typ,
		key:          key,
		pendingProps: props,
	}
	a.slots[n.id] = &slot{wip: n}
	return n
}

// CloneForUpdate builds the work-in-progress counterpart of current. State is
// copied so the current version is never written by a render pass; flags,
// effect links and tree links start empty.
func (a *Arena) CloneForUpdate(current *Node, props Props) *Node {
	s, ok := a.slots[current.id]
	if !ok {
		s = &slot{current: current}
		a.slots[current.id] = s
	}
	n := &Node{
		id:            current.id,
		kind:          current.kind,
		typ:           current.typ,
		key:           current.key,
		component:     current.component,
		pendingProps:  props,
		memoizedProps: current.memoizedProps,
		fingerprint:   current.fingerprint,
	}
	if current.state != nil {
		n.state = make(map[string]any, len(current.state))
		for k, v := range current.state {
			n.state[k] = v
		}
	}
	s.wip = n
	return n
}

// Alternate returns the other version of n, or nil when there is none.
func (a *Arena) Alternate(n *Node) *Node {
	s, ok := a.slots[n.id]
	if !ok {
		return nil
	}
	switch n {
	case s.current:
		return s.wip
	case s.wip:
		return s.current
	}
	return nil
}

// Current returns the committed version of the node with id.
func (a *Arena) Current(id ID) *Node {
	if s, ok := a.slots[id]; ok {
		return s.current
	}
	return nil
}

// Len is the number of node versions held.
func (a *Arena) Len() int {
	count := 0
	for _, s := range a.slots {
		if s.current != nil {
			count++
		}
		if s.wip != nil {
			count++
		}
	}
	return count
}

// promote makes the work-in-progress version of each id current and drops the
// superseded version.
func (a *Arena) promote(ids mapset.Set[ID]) {
	ids.Each(func(id ID) bool {
		if s, ok := a.slots[id]; ok && s.wip != nil {
			s.current, s.wip = s.wip, nil
		}
		return false
	})
}

// release forgets a logical node entirely.
func (a *Arena) release(id ID) {
	delete(a.slots, id)
}

// discard drops the work-in-progress versions of ids, forgetting slots that
// have no committed version.
func (a *Arena) discard(ids mapset.Set[ID]) {
	ids.Each(func(id ID) bool {
		s, ok := a.slots[id]
		if !ok {
			return false
		}
		s.wip = nil
		if s.current == nil {
			delete(a.slots, id)
		}
		return false
	})
}
