// Package hosttree is an in-memory mutation target: a tree of host instances
// kept in step with a fiber.Root by its commit passes.
package hosttree

import (
	"errors"
	"fmt"
	"slices"

	"github.com/delaneyj/fiberparty/fiber"
)

var (
	ErrUnknownNode   = errors.New("hosttree: unknown node")
	ErrUnknownBefore = errors.New("hosttree: insertion point is not a child of the parent")
)

// Instance is one host element, text node or the root container.
type Instance struct {
	ID       fiber.ID
	Kind     fiber.Kind
	Type     string
	Props    fiber.Props
	Text     string
	Parent   *Instance
	Children []*Instance
}

// OpKind names a mutation applied to the tree.
type OpKind string

const (
	OpInsert OpKind = "insert"
	OpUpdate OpKind = "update"
	OpRemove OpKind = "remove"
)

// Op records one mutation, in the order the commit engine issued it.
type Op struct {
	Kind   OpKind
	ID     fiber.ID
	Type   string
	Parent fiber.ID
	Before fiber.ID
}

func (o Op) String() string {
	switch o.Kind {
	case OpInsert:
		return fmt.Sprintf("insert %s#%d into %d before %d", o.Type, o.ID, o.Parent, o.Before)
	default:
		return fmt.Sprintf("%s %s#%d", o.Kind, o.Type, o.ID)
	}
}

// Tree implements fiber.Target, fiber.Preparer and fiber.Snapshotter.
type Tree struct {
	root      *Instance
	instances map[fiber.ID]*Instance
	ops       []Op

	// Validate, when set, is consulted for every host node that is placed or
	// updated while it completes.
	Validate func(n *fiber.Node) error
	// Fail, when set, can reject a mutation before it is applied.
	Fail func(op OpKind, n *fiber.Node) error
}

func New() *Tree {
	return &Tree{instances: map[fiber.ID]*Instance{}}
}

// Root returns the mounted root container, nil until the first commit.
func (t *Tree) Root() *Instance { return t.root }

// Ops returns the mutations applied so far.
func (t *Tree) Ops() []Op { return slices.Clone(t.ops) }

func (t *Tree) ResetOps() { t.ops = nil }

// Len is the number of instances held, mounted or not.
func (t *Tree) Len() int { return len(t.instances) }

// Lookup returns the instance for id.
func (t *Tree) Lookup(id fiber.ID) (*Instance, bool) {
	inst, ok := t.instances[id]
	return inst, ok
}

func (t *Tree) Prepare(n *fiber.Node) error {
	if t.Validate != nil {
		return t.Validate(n)
	}
	return nil
}

// Snapshot captures the instance's props as they were before the update.
func (t *Tree) Snapshot(n *fiber.Node) (any, error) {
	inst, ok := t.instances[n.ID()]
	if !ok {
		return nil, nil
	}
	snap := make(fiber.Props, len(inst.Props)+1)
	for k, v := range inst.Props {
		snap[k] = v
	}
	if inst.Text != "" {
		snap[fiber.TextContent] = inst.Text
	}
	return snap, nil
}

// instance returns the instance for n, building a detached one on first use.
// Children are placed before their parents, so a parent can be referenced
// before it is inserted itself.
func (t *Tree) instance(n *fiber.Node) *Instance {
	if inst, ok := t.instances[n.ID()]; ok {
		return inst
	}
	inst := &Instance{ID: n.ID(), Kind: n.Kind(), Type: n.Type(), Props: fiber.Props{}}
	for k, v := range n.PendingProps() {
		if k == fiber.TextContent {
			inst.Text, _ = v.(string)
			continue
		}
		inst.Props[k] = v
	}
	t.instances[n.ID()] = inst
	return inst
}

func (t *Tree) Insert(n, parent, before *fiber.Node) error {
	if t.Fail != nil {
		if err := t.Fail(OpInsert, n); err != nil {
			return err
		}
	}
	inst := t.instance(n)
	op := Op{Kind: OpInsert, ID: n.ID(), Type: n.Type()}
	if parent == nil {
		t.root = inst
		t.ops = append(t.ops, op)
		return nil
	}

	p := t.instance(parent)
	op.Parent = parent.ID()
	if inst.Parent != nil {
		inst.Parent.detach(inst)
	}
	at := len(p.Children)
	if before != nil {
		op.Before = before.ID()
		at = p.indexOf(before.ID())
		if at < 0 {
			return fmt.Errorf("%w: %d in %d", ErrUnknownBefore, before.ID(), parent.ID())
		}
	}
	p.Children = slices.Insert(p.Children, at, inst)
	inst.Parent = p
	t.ops = append(t.ops, op)
	return nil
}

func (t *Tree) Update(n *fiber.Node, payload fiber.Props) error {
	if t.Fail != nil {
		if err := t.Fail(OpUpdate, n); err != nil {
			return err
		}
	}
	inst, ok := t.instances[n.ID()]
	if !ok {
		return fmt.Errorf("%w: update %d", ErrUnknownNode, n.ID())
	}
	for k, v := range payload {
		switch {
		case k == fiber.TextContent:
			inst.Text, _ = v.(string)
		case v == nil:
			delete(inst.Props, k)
		default:
			inst.Props[k] = v
		}
	}
	t.ops = append(t.ops, Op{Kind: OpUpdate, ID: n.ID(), Type: n.Type()})
	return nil
}

func (t *Tree) Remove(n *fiber.Node) error {
	if t.Fail != nil {
		if err := t.Fail(OpRemove, n); err != nil {
			return err
		}
	}
	inst, ok := t.instances[n.ID()]
	if !ok {
		return fmt.Errorf("%w: remove %d", ErrUnknownNode, n.ID())
	}
	if inst.Parent != nil {
		inst.Parent.detach(inst)
	}
	if t.root == inst {
		t.root = nil
	}
	t.forget(inst)
	t.ops = append(t.ops, Op{Kind: OpRemove, ID: n.ID(), Type: n.Type()})
	return nil
}

func (t *Tree) forget(inst *Instance) {
	delete(t.instances, inst.ID)
	for _, c := range inst.Children {
		t.forget(c)
	}
}

func (i *Instance) indexOf(id fiber.ID) int {
	return slices.IndexFunc(i.Children, func(c *Instance) bool { return c.ID == id })
}

func (i *Instance) detach(child *Instance) {
	if at := i.indexOf(child.ID); at >= 0 {
		i.Children = slices.Delete(i.Children, at, at+1)
	}
	child.Parent = nil
}
