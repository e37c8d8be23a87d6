package fiber

// Target is the external surface the commit engine mutates. Only the mutation
// pass calls it. Insert with a nil parent mounts the root container; a nil
// before appends.
type Target interface {
	Insert(n, parent, before *Node) error
	Update(n *Node, payload Props) error
	Remove(n *Node) error
}

// Preparer is implemented by targets that validate or pre-build host
// instances while nodes complete. An error aborts the render pass.
type Preparer interface {
	Prepare(n *Node) error
}

// Snapshotter is implemented by targets that expose state worth reading
// before a node is mutated, such as measurements.
type Snapshotter interface {
	Snapshot(n *Node) (any, error)
}

// Transactional targets make commit failures recoverable: a failed commit is
// rolled back and the current tree stays as it was.
type Transactional interface {
	Begin() error
	Commit() error
	Rollback() error
}

// Yielder decides whether an interruptible render should hand control back.
type Yielder interface {
	ShouldYield() bool
}

// YieldFunc adapts a function to a Yielder.
type YieldFunc func() bool

func (f YieldFunc) ShouldYield() bool { return f() }

var (
	// YieldNever runs a pass to completion in a single slice.
	YieldNever Yielder = YieldFunc(func() bool { return false })
	// YieldAlways suspends after every unit of work.
	YieldAlways Yielder = YieldFunc(func() bool { return true })
)
