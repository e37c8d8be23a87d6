package fiber

import (
	"errors"
	"io"
	"log/slog"
	"sync"
)

// ErrUpdateLoop is returned when components keep scheduling updates from
// inside the passes that render them.
var ErrUpdateLoop = errors.New("fiber: too many nested updates")

// maxNestedPasses bounds the passes one Flush runs after its first.
const maxNestedPasses = 50

// Stats counts what a Root has done so far.
type Stats struct {
	Renders   int
	Commits   int
	Discards  int
	Failures  int
	Units     int
	LiveNodes int
}

type options struct {
	logger   *slog.Logger
	trace    func(Step)
	onFatal  func(error)
	onCommit func(CommitInfo)
}

type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTrace reports every capture and completion step.
func WithTrace(fn func(Step)) Option {
	return func(o *options) { o.trace = fn }
}

// WithFatalHandler is called when a commit fails on a target that cannot roll
// back. The root refuses further work afterwards.
func WithFatalHandler(fn func(error)) Option {
	return func(o *options) { o.onFatal = fn }
}

// WithCommitObserver is called after every successful commit, with the root
// still locked; fn must not call back into the root.
func WithCommitObserver(fn func(CommitInfo)) Option {
	return func(o *options) { o.onCommit = fn }
}

// Root owns a current tree, the work-in-progress pass being built on top of it
// and the queue of updates not yet committed. Only one pass is in flight at a
// time; Schedule and component state updates may be called from any
// goroutine.
type Root struct {
	mu     sync.Mutex
	opts   options
	log    *slog.Logger
	target Target
	arena  *Arena

	current      *Node
	walk         *walk
	queue        updateQueue
	committedSeq uint64
	broken       error

	stats Stats
	last  CommitInfo
}

func NewRoot(target Target, opts ...Option) (*Root, error) {
	if target == nil {
		return nil, ErrNoTarget
	}
	r := &Root{target: target, arena: NewArena()}
	for _, opt := range opts {
		opt(&r.opts)
	}
	r.log = r.opts.logger
	if r.log == nil {
		r.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return r, nil
}

// Schedule queues el as the next description to render. Normal updates that
// arrive during a pass are picked up by the following pass; high priority
// ones make the next Work call discard a suspended pass and restart.
func (r *Root) Schedule(el *Element, p Priority) {
	seq := r.queue.setElement(el, p)
	r.log.Debug("update scheduled", "seq", seq, "priority", p)
}

func (r *Root) enqueueState(id ID, key string, fn func(any) any) {
	r.queue.addState(stateUpdate{id: id, key: key, apply: fn})
}

// Render synchronously renders and commits el. Either the whole update is
// applied and becomes current, or an error is returned and current is left
// as it was.
func (r *Root) Render(el *Element) error {
	r.Schedule(el, PriorityHigh)
	return r.Flush()
}

// Flush synchronously finishes all pending work, preempting a suspended pass
// if a high priority update is waiting.
func (r *Root) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for passes := 0; ; passes++ {
		if r.broken != nil {
			return r.broken
		}
		if passes > maxNestedPasses {
			return ErrUpdateLoop
		}
		if r.walk != nil && r.queue.takePreempt() {
			r.discardWalk("preempted")
		}
		if r.walk == nil {
			if !r.pendingLocked() {
				return nil
			}
			r.startWalk()
		}
		if err := r.walk.workLoopSync(); err != nil {
			r.abortWalk(err)
			return err
		}
		if err := r.commitWalk(); err != nil {
			return err
		}
	}
}

// Work performs one slice of interruptible rendering, suspending whenever y
// asks to yield. A finished pass is committed before returning. done reports
// that no work is left.
func (r *Root) Work(y Yielder) (done bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.broken != nil {
		return true, r.broken
	}
	if r.walk != nil && r.queue.takePreempt() {
		r.discardWalk("preempted")
	}
	if r.walk == nil {
		if !r.pendingLocked() {
			return true, nil
		}
		r.startWalk()
	}
	if err := r.walk.workLoopConcurrent(y); err != nil {
		r.abortWalk(err)
		return true, err
	}
	if !r.walk.finished() {
		return false, nil
	}
	if err := r.commitWalk(); err != nil {
		return true, err
	}
	return !r.pendingLocked(), nil
}

// Discard drops a suspended pass, releasing its nodes. It reports whether
// there was one.
func (r *Root) Discard() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.walk == nil {
		return false
	}
	r.discardWalk("discarded by caller")
	return true
}

// Current returns the root of the committed tree, nil before the first
// commit.
func (r *Root) Current() *Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Pending reports whether updates are waiting to be committed.
func (r *Root) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pendingLocked()
}

// Suspended reports whether an interruptible pass is waiting to be resumed.
func (r *Root) Suspended() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.walk != nil
}

func (r *Root) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats
	s.LiveNodes = r.arena.Len()
	return s
}

// LastCommit describes the most recent successful commit.
func (r *Root) LastCommit() CommitInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Root) pendingLocked() bool {
	return r.queue.latest() > r.committedSeq
}

func (r *Root) startWalk() {
	r.walk = r.newWalk()
	r.stats.Renders++
	r.log.Debug("render pass started", "seq", r.walk.seq, "root", r.walk.wipRoot.id)
}

func (r *Root) discardWalk(reason string) {
	w := r.walk
	w.discard()
	r.walk = nil
	r.stats.Discards++
	r.stats.Units += w.units
	r.log.Debug("render pass discarded", "reason", reason, "seq", w.seq, "units", w.units)
}

func (r *Root) abortWalk(err error) {
	r.stats.Failures++
	r.log.Warn("render pass failed", "error", err)
	r.discardWalk("render error")
}

func (r *Root) commitWalk() error {
	w := r.walk
	info, err := r.commitRoot(w)
	r.stats.Units += w.units
	if err != nil {
		r.stats.Failures++
		w.discard()
		r.walk = nil
		var ce *CommitError
		if errors.As(err, &ce) && ce.RolledBack {
			r.log.Warn("commit rolled back", "error", err)
			return err
		}
		r.broken = errors.Join(ErrRootBroken, err)
		r.log.Error("commit failed", "error", err)
		if r.opts.onFatal != nil {
			r.opts.onFatal(r.broken)
		}
		return r.broken
	}

	r.walk = nil
	r.committedSeq = w.seq
	r.queue.ack(w.seq)
	r.stats.Commits++
	r.last = info
	r.log.Debug("committed",
		"seq", w.seq,
		"effects", len(info.Effects),
		"deletions", len(info.Deletions),
		"units", info.Units,
		"slices", info.Slices,
		"render", info.RenderTime,
		"commit", info.CommitTime,
	)
	if r.opts.onCommit != nil {
		r.opts.onCommit(info)
	}
	return nil
}
