package fiber

import (
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// StepPhase tells whether a traced unit of work captured or completed a node.
type StepPhase string

const (
	StepBegin    StepPhase = "begin"
	StepComplete StepPhase = "complete"
)

// Step is one traced unit of work.
type Step struct {
	Phase StepPhase
	ID    ID
	Kind  Kind
	Type  string
}

// walk is the state of one render pass. It replaces any process-wide cursor:
// a suspended pass is resumed by handing the same walk back to a work loop.
type walk struct {
	root     *Root
	arena    *Arena
	preparer Preparer
	element  *Element
	seq      uint64

	wipRoot *Node
	cursor  *Node

	created mapset.Set[ID]
	cloned  mapset.Set[ID]

	units   int
	slices  int
	started time.Time
}

func (r *Root) newWalk() *walk {
	w := &walk{
		root:    r,
		arena:   r.arena,
		created: mapset.NewThreadUnsafeSet[ID](),
		cloned:  mapset.NewThreadUnsafeSet[ID](),
		started: time.Now(),
	}
	w.preparer, _ = r.target.(Preparer)
	w.element, w.seq = r.queue.snapshot()

	if r.current == nil {
		w.wipRoot = r.arena.CreateNode(KindHostRoot, rootType, "", nil)
		w.wipRoot.flags.set(Placement)
		w.created.Add(w.wipRoot.id)
	} else {
		w.wipRoot = r.arena.CloneForUpdate(r.current, nil)
		w.cloned.Add(w.wipRoot.id)
	}
	w.cursor = w.wipRoot
	return w
}

func (w *walk) finished() bool {
	return w.cursor == nil
}

// performUnitOfWork captures the cursor and, for leaves, runs the completion
// chain, then advances the cursor.
func (w *walk) performUnitOfWork() error {
	unit := w.cursor
	if unit.phase != phasePending {
		return renderError(unit, "begin", errRevisit)
	}
	unit.phase = phaseCapturing
	w.trace(StepBegin, unit)

	next, err := w.beginWork(w.arena.Alternate(unit), unit)
	if err != nil {
		return renderError(unit, "begin", err)
	}
	unit.memoizedProps = unit.pendingProps
	unit.fingerprint = unit.pendingProps.Fingerprint()

	if next == nil {
		next, err = w.completeUnitOfWork(unit)
		if err != nil {
			return err
		}
	}
	w.cursor = next
	w.units++
	return nil
}

// workLoopSync walks until the tree is done. It never yields.
func (w *walk) workLoopSync() error {
	for w.cursor != nil {
		if err := w.performUnitOfWork(); err != nil {
			return err
		}
	}
	return nil
}

// workLoopConcurrent walks until the tree is done or y asks to yield after a
// unit of work. The cursor is left in place for the next call.
func (w *walk) workLoopConcurrent(y Yielder) error {
	w.slices++
	for w.cursor != nil {
		if err := w.performUnitOfWork(); err != nil {
			return err
		}
		if w.cursor != nil && y.ShouldYield() {
			return nil
		}
	}
	return nil
}

func (w *walk) trace(ph StepPhase, n *Node) {
	if w.root.opts.trace != nil {
		w.root.opts.trace(Step{Phase: ph, ID: n.id, Kind: n.kind, Type: n.typ})
	}
}

// discard releases every node version this pass created. The current tree
// is not touched.
func (w *walk) discard() {
	w.arena.discard(w.created)
	w.arena.discard(w.cloned)
	w.cursor = nil
}
