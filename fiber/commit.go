package fiber

import (
	"errors"
	"time"
)

// EffectRecord describes one entry of a committed effect list.
type EffectRecord struct {
	ID      ID
	Kind    Kind
	Type    string
	Key     string
	Flags   Flags
	Payload Props
}

// DeletionRecord describes one subtree removed by a commit.
type DeletionRecord struct {
	Parent ID
	ID     ID
	Type   string
}

// CommitInfo summarises a successful commit.
type CommitInfo struct {
	Effects    []EffectRecord
	Deletions  []DeletionRecord
	Units      int
	Slices     int
	RenderTime time.Duration
	CommitTime time.Duration
}

// Effects returns the effect list hanging off a completed root, in order.
func Effects(root *Node) []*Node {
	var out []*Node
	for n := root.firstEffect; n != nil; n = n.nextEffect {
		out = append(out, n)
	}
	return out
}

func recordEffects(root *Node) CommitInfo {
	var info CommitInfo
	for _, n := range Effects(root) {
		info.Effects = append(info.Effects, EffectRecord{
			ID:      n.id,
			Kind:    n.kind,
			Type:    n.typ,
			Key:     n.key,
			Flags:   n.flags,
			Payload: n.updatePayload,
		})
		for _, d := range n.deletions {
			info.Deletions = append(info.Deletions, DeletionRecord{Parent: n.id, ID: d.id, Type: d.typ})
		}
	}
	return info
}

// commitRoot applies the finished pass to the target in three passes that
// never suspend, then swaps the current tree.
func (r *Root) commitRoot(w *walk) (CommitInfo, error) {
	start := time.Now()
	finished := w.wipRoot
	info := recordEffects(finished)
	info.Units = w.units
	info.Slices = w.slices
	info.RenderTime = start.Sub(w.started)

	tx, _ := r.target.(Transactional)
	if tx != nil {
		if err := tx.Begin(); err != nil {
			return info, &CommitError{Pass: PassBeforeMutation, ID: finished.id, Type: finished.typ, RolledBack: true, Err: err}
		}
	}
	fail := func(pass CommitPass, n *Node, err error) error {
		ce := &CommitError{Pass: pass, ID: n.id, Type: n.typ, Err: err}
		if tx != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				ce.Err = errors.Join(err, rbErr)
			} else {
				ce.RolledBack = true
			}
		}
		return ce
	}

	if n, err := r.commitBeforeMutationEffects(finished); err != nil {
		return info, fail(PassBeforeMutation, n, err)
	}
	m, n, err := r.commitMutationEffects(finished)
	if err != nil {
		// a plain target keeps whatever removals already happened
		if tx == nil {
			m.unmount()
		}
		return info, fail(PassMutation, n, err)
	}
	if tx != nil {
		if err := tx.Commit(); err != nil {
			return info, fail(PassMutation, finished, err)
		}
	}

	// unmount and after hooks only see mutations the target has kept. The
	// target cannot take them back now, so a hook error breaks the root.
	m.unmount()
	if n, err := r.commitLayoutEffects(finished); err != nil {
		return info, &CommitError{Pass: PassAfterMutation, ID: n.id, Type: n.typ, Err: err}
	}

	for _, id := range m.released {
		r.arena.release(id)
	}
	r.queue.forget(m.released)
	r.arena.promote(w.created)
	r.arena.promote(w.cloned)
	r.current = finished
	clearEffects(finished)

	info.CommitTime = time.Since(start)
	return info, nil
}

// mutations is what the mutation pass leaves for after the target accepted
// it: the IDs of deleted nodes and the unmount hooks of deleted components.
type mutations struct {
	released []ID
	cleanups []func()
}

func (m mutations) unmount() {
	for _, fn := range m.cleanups {
		fn()
	}
}

func (r *Root) commitBeforeMutationEffects(root *Node) (*Node, error) {
	snap, _ := r.target.(Snapshotter)
	for n := root.firstEffect; n != nil; n = n.nextEffect {
		if n.flags.Has(Snapshot) {
			for _, fn := range n.hooks.before {
				if err := fn(); err != nil {
					return n, err
				}
			}
		}
		if snap != nil && n.isHost() && n.flags.Has(Update) {
			v, err := snap.Snapshot(n)
			if err != nil {
				return n, err
			}
			n.snapshot = v
		}
	}
	return nil, nil
}

// commitMutationEffects performs every recorded deletion first, then the
// placements and updates, both in effect-list order. Unmount hooks of deleted
// components are collected, not run.
func (r *Root) commitMutationEffects(root *Node) (mutations, *Node, error) {
	var m mutations
	if !(root.flags | root.subtreeFlags).Has(MutationMask) {
		return m, nil, nil
	}
	for n := root.firstEffect; n != nil; n = n.nextEffect {
		for _, d := range n.deletions {
			if failed, err := r.commitDeletion(d, &m); err != nil {
				return m, failed, err
			}
		}
	}
	for n := root.firstEffect; n != nil; n = n.nextEffect {
		if n.flags.Has(Placement) {
			if err := r.commitPlacement(n); err != nil {
				return m, n, err
			}
			n.flags.clear(Placement)
		}
		if n.flags.Has(Update) {
			if err := r.target.Update(n, n.updatePayload); err != nil {
				return m, n, err
			}
		}
	}
	return m, nil, nil
}

func (r *Root) commitLayoutEffects(root *Node) (*Node, error) {
	for n := root.firstEffect; n != nil; n = n.nextEffect {
		if !n.flags.Has(Callback) {
			continue
		}
		for _, fn := range n.hooks.after {
			if err := fn(); err != nil {
				return n, err
			}
		}
	}
	return nil, nil
}

func (r *Root) commitPlacement(n *Node) error {
	switch {
	case n.kind == KindHostRoot:
		return r.target.Insert(n, nil, nil)
	case n.isHost():
		return r.target.Insert(n, hostParent(n), hostSibling(n))
	}
	return nil
}

// commitDeletion removes the topmost host nodes of a deleted subtree and
// records the unmount hooks of every component inside it.
func (r *Root) commitDeletion(d *Node, m *mutations) (*Node, error) {
	var (
		failed *Node
		err    error
	)
	var visit func(n *Node, detached bool)
	visit = func(n *Node, detached bool) {
		if err != nil {
			return
		}
		m.released = append(m.released, n.id)
		if n.kind == KindComposite {
			m.cleanups = append(m.cleanups, n.hooks.cleanup...)
		}
		if n.isHost() && !detached {
			if err = r.target.Remove(n); err != nil {
				failed = n
				return
			}
			detached = true
		}
		for c := n.child; c != nil; c = c.sibling {
			visit(c, detached)
		}
	}
	visit(d, false)
	return failed, err
}

func hostParent(n *Node) *Node {
	p := n.parent
	for p != nil && !p.isHostParent() {
		p = p.parent
	}
	return p
}

// hostSibling finds the host node n must be inserted before: the next host
// node in the same host parent that is already in place. Nodes still waiting
// for placement are skipped.
func hostSibling(n *Node) *Node {
	node := n
siblings:
	for {
		for node.sibling == nil {
			if node.parent == nil || node.parent.isHostParent() {
				return nil
			}
			node = node.parent
		}
		node = node.sibling
		for !node.isHost() {
			if node.flags.Has(Placement) || node.child == nil {
				continue siblings
			}
			node = node.child
		}
		if !node.flags.Has(Placement) {
			return node
		}
	}
}

func clearEffects(root *Node) {
	Walk(root, func(n *Node) bool {
		n.nextEffect = nil
		n.firstEffect = nil
		n.lastEffect = nil
		n.deletions = nil
		return true
	})
}
