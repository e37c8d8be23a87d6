package fiber

// completeWork finalizes one node once all of its children have completed.
func (w *walk) completeWork(n *Node) error {
	size := 0
	for c := n.child; c != nil; c = c.sibling {
		size += c.hostSize
	}
	if n.isHost() {
		size++
		if n.flags.Has(Placement|Update) && w.preparer != nil {
			if err := w.preparer.Prepare(n); err != nil {
				return err
			}
		}
	}
	n.hostSize = size
	return nil
}

// completeUnitOfWork runs the bubble phase from unit upwards: each node is
// finalized and its effects are spliced onto its parent's effect list, so the
// list ends up in post-order. It returns the next sibling to capture, or nil
// once the root has completed.
func (w *walk) completeUnitOfWork(unit *Node) (*Node, error) {
	n := unit
	for {
		if n.phase == phaseDone {
			return nil, renderError(n, "complete", errRevisit)
		}
		n.phase = phaseCompleting
		w.trace(StepComplete, n)
		if err := w.completeWork(n); err != nil {
			return nil, renderError(n, "complete", err)
		}
		n.phase = phaseDone

		parent := n.parent
		if parent == nil {
			// The root carries its own effects at the tail of its list.
			if n.flags != NoFlags {
				appendEffect(n, n)
			}
			return nil, nil
		}

		parent.subtreeFlags |= n.subtreeFlags | n.flags
		if parent.firstEffect == nil {
			parent.firstEffect = n.firstEffect
		}
		if n.lastEffect != nil {
			if parent.lastEffect != nil {
				parent.lastEffect.nextEffect = n.firstEffect
			}
			parent.lastEffect = n.lastEffect
		}
		if n.flags != NoFlags {
			appendEffect(parent, n)
		}

		if n.sibling != nil {
			return n.sibling, nil
		}
		n = parent
	}
}

func appendEffect(list, n *Node) {
	if list.lastEffect != nil {
		list.lastEffect.nextEffect = n
	} else {
		list.firstEffect = n
	}
	list.lastEffect = n
}
