package fiber

// reconcileChildren matches the current children of wip against elements by
// position. A child with the same kind, type and key is cloned; anything else
// is created fresh and the old child at that position is recorded for
// deletion on wip. Returns the first new child.
func (w *walk) reconcileChildren(wip, currentFirst *Node, elements []*Element) *Node {
	var (
		old   = currentFirst
		first *Node
		prev  *Node
	)
	for _, el := range elements {
		if el == nil {
			continue
		}
		var n *Node
		if old != nil && old.matches(el) {
			n = w.useNode(old, el)
		} else {
			if old != nil {
				w.deleteChild(wip, old)
			}
			n = w.newNode(el)
		}
		n.parent = wip
		if prev == nil {
			first = n
		} else {
			prev.sibling = n
		}
		prev = n
		if old != nil {
			old = old.sibling
		}
	}
	for ; old != nil; old = old.sibling {
		w.deleteChild(wip, old)
	}
	wip.child = first
	return first
}

func (w *walk) deleteChild(parent, old *Node) {
	parent.deletions = append(parent.deletions, old)
	parent.flags.set(ChildDeletion)
}

func (w *walk) deleteRemaining(parent, currentFirst *Node) {
	for old := currentFirst; old != nil; old = old.sibling {
		w.deleteChild(parent, old)
	}
}

func (w *walk) newNode(el *Element) *Node {
	n := w.arena.CreateNode(el.Kind, elementType(el), el.Key, propsFor(el))
	n.component = el.Component
	n.elements = el.Children
	n.flags.set(Placement)
	w.created.Add(n.id)
	return n
}

// useNode clones old for el and records an Update when a host-visible prop
// changed.
func (w *walk) useNode(old *Node, el *Element) *Node {
	props := propsFor(el)
	n := w.arena.CloneForUpdate(old, props)
	n.component = el.Component
	n.elements = el.Children
	w.cloned.Add(n.id)
	if n.isHost() {
		if payload := diffProps(old, props); payload != nil {
			n.updatePayload = payload
			n.flags.set(Update)
		}
	}
	return n
}

func diffProps(old *Node, next Props) Props {
	if old.fingerprint == next.Fingerprint() {
		return nil
	}
	return old.memoizedProps.Diff(next)
}
