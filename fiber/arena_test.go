package fiber

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaLifecycle(t *testing.T) {
	a := NewArena()
	n := a.CreateNode(KindHost, "div", "", Props{"a": 1})
	assert.Equal(t, ID(1), n.ID())
	assert.Nil(t, a.Alternate(n))
	assert.Nil(t, a.Current(n.ID()))
	assert.Equal(t, 1, a.Len())

	a.promote(mapset.NewThreadUnsafeSet(n.ID()))
	assert.Same(t, n, a.Current(n.ID()))
	assert.Equal(t, 1, a.Len())

	n.memoizedProps = n.pendingProps
	n.state = map[string]any{"count": 1}
	clone := a.CloneForUpdate(n, Props{"a": 2})
	assert.Equal(t, n.ID(), clone.ID())
	assert.Same(t, clone, a.Alternate(n))
	assert.Same(t, n, a.Alternate(clone))
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, Props{"a": 1}, clone.Props())
	assert.Equal(t, Props{"a": 2}, clone.PendingProps())

	clone.state["count"] = 2
	v, _ := n.State("count")
	assert.Equal(t, 1, v, "clone state must be a copy")

	a.promote(mapset.NewThreadUnsafeSet(clone.ID()))
	assert.Same(t, clone, a.Current(n.ID()))
	assert.Nil(t, a.Alternate(clone))
	assert.Equal(t, 1, a.Len())

	a.release(n.ID())
	assert.Zero(t, a.Len())
	assert.Nil(t, a.Current(n.ID()))
}

func TestArenaDiscard(t *testing.T) {
	a := NewArena()
	kept := a.CreateNode(KindHost, "div", "", nil)
	a.promote(mapset.NewThreadUnsafeSet(kept.ID()))

	clone := a.CloneForUpdate(kept, nil)
	fresh := a.CreateNode(KindText, "#text", "", nil)
	require.Equal(t, 3, a.Len())

	a.discard(mapset.NewThreadUnsafeSet(clone.ID(), fresh.ID()))
	assert.Equal(t, 1, a.Len())
	assert.Same(t, kept, a.Current(kept.ID()))
	assert.Nil(t, a.Alternate(kept))

	// IDs are never reused
	next := a.CreateNode(KindHost, "p", "", nil)
	assert.Equal(t, ID(3), next.ID())
}

func TestWalkAndPostOrder(t *testing.T) {
	a := NewArena()
	root := a.CreateNode(KindHostRoot, rootType, "", nil)
	div := a.CreateNode(KindHost, "div", "", nil)
	p := a.CreateNode(KindHost, "p", "", nil)
	span := a.CreateNode(KindHost, "span", "", nil)
	root.child = div
	div.parent = root
	div.child = p
	p.parent = div
	p.sibling = span
	span.parent = div

	var types []string
	for _, n := range PostOrder(root) {
		types = append(types, n.Type())
	}
	assert.Equal(t, []string{"p", "span", "div", rootType}, types)

	types = nil
	Walk(root, func(n *Node) bool {
		types = append(types, n.Type())
		return n.Kind() == KindHostRoot
	})
	assert.Equal(t, []string{rootType, "div"}, types)
	assert.Equal(t, []*Node{p, span}, div.Children())
}

func TestUpdateQueue(t *testing.T) {
	var q updateQueue
	el := H("div", nil)
	q.setElement(el, PriorityHigh)
	q.addState(stateUpdate{id: 7, key: "n"})

	got, seq := q.snapshot()
	assert.Same(t, el, got)
	assert.Equal(t, uint64(2), seq)
	assert.False(t, q.takePreempt(), "snapshot folds a pending preemption in")

	q.addState(stateUpdate{id: 7, key: "n"})
	q.addState(stateUpdate{id: 8, key: "n"})
	assert.Len(t, q.statesFor(7, seq), 1)
	assert.Len(t, q.statesFor(7, q.latest()), 2)

	q.ack(seq)
	assert.Len(t, q.states, 2)
	q.forget([]ID{7})
	require.Len(t, q.states, 1)
	assert.Equal(t, ID(8), q.states[0].id)
}
