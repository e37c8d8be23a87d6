package fiber

import (
	"errors"
	"fmt"
)

var (
	// ErrRootBroken is returned by every operation on a Root after a commit
	// failed part-way through a non-transactional target.
	ErrRootBroken = errors.New("fiber: root is broken by a failed commit")
	// ErrNoTarget is returned by NewRoot when the target is nil.
	ErrNoTarget = errors.New("fiber: nil mutation target")
	errRevisit  = errors.New("node visited after completion")
)

// RenderError reports a failure while capturing or completing a node. The
// render pass it belongs to has been discarded.
type RenderError struct {
	ID    ID
	Kind  Kind
	Type  string
	Phase string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("fiber: %s %s %q (node %d): %v", e.Phase, e.Kind, e.Type, e.ID, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// CommitPass names the sub-pass of a commit.
type CommitPass string

const (
	PassBeforeMutation CommitPass = "before-mutation"
	PassMutation       CommitPass = "mutation"
	PassAfterMutation  CommitPass = "after-mutation"
)

// CommitError reports a failure while applying an effect list.
type CommitError struct {
	Pass       CommitPass
	ID         ID
	Type       string
	RolledBack bool
	Err        error
}

func (e *CommitError) Error() string {
	state := "fatal"
	if e.RolledBack {
		state = "rolled back"
	}
	return fmt.Sprintf("fiber: commit %s pass failed on %q (node %d, %s): %v", e.Pass, e.Type, e.ID, state, e.Err)
}

func (e *CommitError) Unwrap() error { return e.Err }

func renderError(n *Node, ph string, err error) error {
	var re *RenderError
	if errors.As(err, &re) {
		return err
	}
	return &RenderError{ID: n.id, Kind: n.kind, Type: n.typ, Phase: ph, Err: err}
}
