package fiber

import "fmt"

// beginWork is the capture step for one node: it reconciles the node's
// children and returns the first one to descend into, or nil for a leaf.
func (w *walk) beginWork(current, wip *Node) (*Node, error) {
	var currentChild *Node
	if current != nil {
		currentChild = current.child
	}

	switch wip.kind {
	case KindHostRoot:
		var elements []*Element
		if w.element != nil {
			elements = []*Element{w.element}
		}
		return w.reconcileChildren(wip, currentChild, elements), nil

	case KindComposite:
		return w.updateComposite(wip, currentChild)

	case KindHost:
		if _, ok := wip.pendingProps[TextContent]; ok {
			// Text-only children stay in the node's props; nothing to descend into.
			w.deleteRemaining(wip, currentChild)
			return nil, nil
		}
		return w.reconcileChildren(wip, currentChild, wip.elements), nil

	case KindText:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown node kind %d", wip.kind)
}

func (w *walk) updateComposite(wip, currentChild *Node) (*Node, error) {
	if wip.component == nil {
		return nil, fmt.Errorf("composite %q has no component function", wip.typ)
	}
	for _, u := range w.root.queue.statesFor(wip.id, w.seq) {
		if wip.state == nil {
			wip.state = map[string]any{}
		}
		wip.state[u.key] = u.apply(wip.state[u.key])
	}

	wip.hooks = hooks{}
	ctx := &ComponentContext{root: w.root, id: wip.id, node: wip}
	children, err := wip.component(ctx, wip.pendingProps)
	ctx.node = nil
	if err != nil {
		return nil, err
	}
	if len(wip.hooks.before) > 0 {
		wip.flags.set(Snapshot)
	}
	if len(wip.hooks.after) > 0 {
		wip.flags.set(Callback)
	}
	return w.reconcileChildren(wip, currentChild, children), nil
}
