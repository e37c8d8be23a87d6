package fiber

// ID is the stable identity shared by both versions of a logical node.
type ID uint32

// TextContent is the prop carrying the text of text nodes and of host
// elements whose children are all text.
const TextContent = "#text"

const rootType = "#root"

type phase uint8

const (
	phasePending phase = iota
	phaseCapturing
	phaseCompleting
	phaseDone
)

// Node is one version of one position in the tree. The current tree and the
// work-in-progress tree each own their own Node values; the two versions of a
// logical node share an ID and are linked through the Arena.
type Node struct {
	id        ID
	kind      Kind
	typ       string
	key       string
	component Component
	elements  []*Element

	pendingProps  Props
	memoizedProps Props
	fingerprint   uint64
	state         map[string]any

	parent  *Node
	child   *Node
	sibling *Node

	flags         Flags
	subtreeFlags  Flags
	nextEffect    *Node
	firstEffect   *Node
	lastEffect    *Node
	deletions     []*Node
	updatePayload Props

	hooks    hooks
	hostSize int
	snapshot any
	phase    phase
}

func (n *Node) ID() ID               { return n.id }
func (n *Node) Kind() Kind           { return n.kind }
func (n *Node) Type() string         { return n.typ }
func (n *Node) Key() string          { return n.key }
func (n *Node) Parent() *Node        { return n.parent }
func (n *Node) FirstChild() *Node    { return n.child }
func (n *Node) NextSibling() *Node   { return n.sibling }
func (n *Node) Flags() Flags         { return n.flags }
func (n *Node) SubtreeFlags() Flags  { return n.subtreeFlags }
func (n *Node) NextEffect() *Node    { return n.nextEffect }
func (n *Node) UpdatePayload() Props { return n.updatePayload }

// Props returns the props used by the last capture of this node.
func (n *Node) Props() Props { return n.memoizedProps }

// PendingProps returns the props the node is being rendered with.
func (n *Node) PendingProps() Props { return n.pendingProps }

// Text returns the text content of text nodes and text-only host elements.
func (n *Node) Text() string {
	props := n.memoizedProps
	if props == nil {
		props = n.pendingProps
	}
	s, _ := props[TextContent].(string)
	return s
}

// HostSize is the number of host instances in the subtree rooted at n,
// computed when the node completes.
func (n *Node) HostSize() int { return n.hostSize }

// Snapshot returns what the before-mutation pass captured for n, if anything.
func (n *Node) Snapshot() any { return n.snapshot }

// State returns a component state value.
func (n *Node) State(key string) (any, bool) {
	v, ok := n.state[key]
	return v, ok
}

// Children returns the child nodes in order.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.child; c != nil; c = c.sibling {
		out = append(out, c)
	}
	return out
}

func (n *Node) isHost() bool {
	return n.kind == KindHost || n.kind == KindText
}

func (n *Node) isHostParent() bool {
	return n.kind == KindHost || n.kind == KindHostRoot
}

func (n *Node) matches(el *Element) bool {
	return n.kind == el.Kind && n.typ == elementType(el) && n.key == el.Key
}

func elementType(el *Element) string {
	if el.Kind == KindText {
		return "#text"
	}
	return el.Type
}

// propsFor returns the props a node renders with for el. Text is folded into
// TextContent for text nodes and for host elements whose children are all
// text.
func propsFor(el *Element) Props {
	switch el.Kind {
	case KindText:
		return Props{TextContent: el.Text}
	case KindHost:
		if text, ok := textOnly(el.Children); ok {
			p := el.Props.clone()
			if p == nil {
				p = Props{}
			}
			p[TextContent] = text
			return p
		}
	}
	return el.Props
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's descendants.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for c := n.child; c != nil; c = c.sibling {
		Walk(c, fn)
	}
}

// PostOrder returns n's subtree in post-order.
func PostOrder(n *Node) []*Node {
	var out []*Node
	var visit func(*Node)
	visit = func(n *Node) {
		for c := n.child; c != nil; c = c.sibling {
			visit(c)
		}
		out = append(out, n)
	}
	if n != nil {
		visit(n)
	}
	return out
}
