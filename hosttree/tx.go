package hosttree

import (
	"errors"

	"github.com/delaneyj/fiberparty/fiber"
)

var ErrNoTransaction = errors.New("hosttree: no transaction in progress")

// TxTree is a Tree that can roll a failed commit back, which turns commit
// failures into recoverable errors for the root.
type TxTree struct {
	*Tree
	saved *state
}

type state struct {
	root      *Instance
	instances map[fiber.ID]*Instance
	ops       int
}

func NewTx() *TxTree {
	return &TxTree{Tree: New()}
}

func (t *TxTree) Begin() error {
	t.saved = t.copyState()
	return nil
}

func (t *TxTree) Commit() error {
	if t.saved == nil {
		return ErrNoTransaction
	}
	t.saved = nil
	return nil
}

func (t *TxTree) Rollback() error {
	if t.saved == nil {
		return ErrNoTransaction
	}
	t.root = t.saved.root
	t.instances = t.saved.instances
	t.ops = t.ops[:t.saved.ops]
	t.saved = nil
	return nil
}

// copyState deep-copies every instance, keeping parent links inside the copy.
func (t *Tree) copyState() *state {
	s := &state{instances: make(map[fiber.ID]*Instance, len(t.instances)), ops: len(t.ops)}
	var copyInst func(i *Instance, parent *Instance) *Instance
	copyInst = func(i *Instance, parent *Instance) *Instance {
		if c, ok := s.instances[i.ID]; ok {
			return c
		}
		c := &Instance{ID: i.ID, Kind: i.Kind, Type: i.Type, Text: i.Text, Parent: parent, Props: fiber.Props{}}
		for k, v := range i.Props {
			c.Props[k] = v
		}
		s.instances[i.ID] = c
		for _, ch := range i.Children {
			c.Children = append(c.Children, copyInst(ch, c))
		}
		return c
	}
	for _, i := range t.instances {
		if i.Parent == nil {
			copyInst(i, nil)
		}
	}
	if t.root != nil {
		s.root = s.instances[t.root.ID]
	}
	return s
}
