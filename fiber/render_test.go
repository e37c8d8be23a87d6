package fiber_test

import (
	"testing"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/hosttree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterTree(count string) *fiber.Element {
	return fiber.H("div", nil,
		fiber.H("p", nil, fiber.T(count)),
		fiber.H("button", nil, fiber.T("click me")),
	)
}

func effectTypes(info fiber.CommitInfo) []string {
	var out []string
	for _, e := range info.Effects {
		out = append(out, e.Type)
	}
	return out
}

func opStrings(ops []hosttree.Op) []string {
	var out []string
	for _, op := range ops {
		out = append(out, string(op.Kind)+" "+op.Type)
	}
	return out
}

func newRoot(t *testing.T, target fiber.Target, opts ...fiber.Option) *fiber.Root {
	t.Helper()
	root, err := fiber.NewRoot(target, opts...)
	require.NoError(t, err)
	return root
}

func TestNewRootNeedsTarget(t *testing.T) {
	_, err := fiber.NewRoot(nil)
	assert.ErrorIs(t, err, fiber.ErrNoTarget)
}

// root > div > [p "0", button "click me"]
func TestWalkthroughFirstRender(t *testing.T) {
	var steps []fiber.Step
	tree := hosttree.New()
	root := newRoot(t, tree, fiber.WithTrace(func(s fiber.Step) {
		steps = append(steps, s)
	}))

	require.NoError(t, root.Render(counterTree("0")))

	var order []string
	for _, s := range steps {
		order = append(order, string(s.Phase)+" "+s.Type)
	}
	assert.Equal(t, []string{
		"begin #root",
		"begin div",
		"begin p",
		"complete p",
		"begin button",
		"complete button",
		"complete div",
		"complete #root",
	}, order)

	info := root.LastCommit()
	assert.Equal(t, []string{"p", "button", "div", "#root"}, effectTypes(info))
	for _, e := range info.Effects {
		assert.Equal(t, fiber.Placement, e.Flags, e.Type)
	}
	assert.Empty(t, info.Deletions)

	assert.Equal(t, []string{"insert p", "insert button", "insert div", "insert #root"}, opStrings(tree.Ops()))
	assert.Equal(t, "<div><p>0</p><button>click me</button></div>", tree.HTML())
}

func TestWalkthroughTextUpdate(t *testing.T) {
	tree := hosttree.New()
	root := newRoot(t, tree)
	require.NoError(t, root.Render(counterTree("0")))
	tree.ResetOps()

	require.NoError(t, root.Render(counterTree("1")))

	info := root.LastCommit()
	require.Len(t, info.Effects, 1)
	assert.Equal(t, "p", info.Effects[0].Type)
	assert.Equal(t, fiber.Update, info.Effects[0].Flags)
	assert.Equal(t, fiber.Props{fiber.TextContent: "1"}, info.Effects[0].Payload)

	assert.Equal(t, []string{"update p"}, opStrings(tree.Ops()))
	assert.Equal(t, "<div><p>1</p><button>click me</button></div>", tree.HTML())
}

func TestHostSize(t *testing.T) {
	root := newRoot(t, hosttree.New())
	require.NoError(t, root.Render(fiber.H("ul", nil,
		fiber.H("li", nil, fiber.T("a")),
		fiber.H("li", nil, fiber.T("b"), fiber.H("em", nil, fiber.T("!"))),
	)))

	ul := root.Current().FirstChild()
	// ul, li, li, "b", em
	assert.Equal(t, 5, ul.HostSize())
	assert.Equal(t, 5, root.Current().HostSize())
	assert.Equal(t, 3, ul.Children()[1].HostSize())
}

func TestRemovedChildIsRecordedOnParent(t *testing.T) {
	tree := hosttree.New()
	root := newRoot(t, tree)
	require.NoError(t, root.Render(counterTree("0")))
	divID := root.Current().FirstChild().ID()
	pID := root.Current().FirstChild().FirstChild().ID()
	tree.ResetOps()

	require.NoError(t, root.Render(fiber.H("div", nil,
		fiber.H("button", nil, fiber.T("click me")),
	)))

	info := root.LastCommit()
	// button moved from position 1 to 0, so it no longer matches anything
	// either and is replaced.
	assert.Equal(t, []string{"button", "div"}, effectTypes(info))
	assert.Equal(t, fiber.Placement, info.Effects[0].Flags)
	assert.True(t, info.Effects[1].Flags.Has(fiber.ChildDeletion))
	assert.Equal(t, divID, info.Effects[1].ID)

	require.Len(t, info.Deletions, 2)
	assert.Equal(t, fiber.DeletionRecord{Parent: divID, ID: pID, Type: "p"}, info.Deletions[0])
	assert.Equal(t, "button", info.Deletions[1].Type)

	assert.Equal(t, []string{"remove p", "remove button", "insert button"}, opStrings(tree.Ops()))
	assert.Equal(t, "<div><button>click me</button></div>", tree.HTML())
}

func TestDeletionsRunBeforePlacements(t *testing.T) {
	tree := hosttree.New()
	root := newRoot(t, tree)
	require.NoError(t, root.Render(counterTree("0")))
	button := root.Current().FirstChild().Children()[1]
	tree.ResetOps()

	require.NoError(t, root.Render(fiber.H("div", nil,
		fiber.H("h1", nil, fiber.T("title")),
		fiber.H("button", nil, fiber.T("click me")),
	)))

	info := root.LastCommit()
	assert.Equal(t, []string{"h1", "div"}, effectTypes(info))
	require.Len(t, info.Deletions, 1)
	assert.Equal(t, "p", info.Deletions[0].Type)

	ops := tree.Ops()
	assert.Equal(t, []string{"remove p", "insert h1"}, opStrings(ops))
	// the button was kept, so the new h1 goes in front of it
	assert.Equal(t, button.ID(), ops[1].Before)
	assert.Equal(t, "<div><h1>title</h1><button>click me</button></div>", tree.HTML())
}

func TestKeyChangeReplacesNode(t *testing.T) {
	tree := hosttree.New()
	root := newRoot(t, tree)
	require.NoError(t, root.Render(fiber.H("ul", nil,
		fiber.H("li", nil, fiber.T("a")).WithKey("a"),
	)))
	oldID := root.Current().FirstChild().FirstChild().ID()

	require.NoError(t, root.Render(fiber.H("ul", nil,
		fiber.H("li", nil, fiber.T("a")).WithKey("z"),
	)))
	li := root.Current().FirstChild().FirstChild()
	assert.NotEqual(t, oldID, li.ID())
	assert.Equal(t, "z", li.Key())
	assert.Equal(t, "<ul><li>a</li></ul>", tree.HTML())
}

func TestMixedChildrenBecomeTextNodes(t *testing.T) {
	tree := hosttree.New()
	root := newRoot(t, tree)
	require.NoError(t, root.Render(fiber.H("p", nil,
		fiber.T("hello "),
		fiber.H("b", nil, fiber.T("world")),
	)))

	p := root.Current().FirstChild()
	kids := p.Children()
	require.Len(t, kids, 2)
	assert.Equal(t, fiber.KindText, kids[0].Kind())
	assert.Equal(t, "hello ", kids[0].Text())
	assert.Equal(t, "<p>hello <b>world</b></p>", tree.HTML())

	// switching to text-only drops the child nodes and sets the text
	require.NoError(t, root.Render(fiber.H("p", nil, fiber.T("plain"))))
	assert.Nil(t, root.Current().FirstChild().FirstChild())
	assert.Equal(t, "<p>plain</p>", tree.HTML())
}

func TestPropUpdatePayload(t *testing.T) {
	tree := hosttree.New()
	root := newRoot(t, tree)
	require.NoError(t, root.Render(fiber.H("a", fiber.Props{"href": "/x", "title": "old"}, fiber.T("x"))))
	require.NoError(t, root.Render(fiber.H("a", fiber.Props{"href": "/y"}, fiber.T("x"))))

	info := root.LastCommit()
	require.Len(t, info.Effects, 1)
	assert.Equal(t, fiber.Props{"href": "/y", "title": nil}, info.Effects[0].Payload)
	assert.Equal(t, `<a href="/y">x</a>`, tree.HTML())
}

func TestUnmountEverything(t *testing.T) {
	tree := hosttree.New()
	root := newRoot(t, tree)
	require.NoError(t, root.Render(counterTree("0")))
	require.NoError(t, root.Render(nil))

	assert.Nil(t, root.Current().FirstChild())
	assert.Equal(t, "", tree.HTML())
	assert.Equal(t, 1, tree.Len())
	assert.Equal(t, 1, root.Stats().LiveNodes)
}

func TestRenderUnchangedIsIdempotent(t *testing.T) {
	tree := hosttree.New()
	root := newRoot(t, tree)
	require.NoError(t, root.Render(counterTree("0")))
	tree.ResetOps()

	require.NoError(t, root.Render(counterTree("0")))
	assert.Empty(t, root.LastCommit().Effects)
	assert.Empty(t, tree.Ops())
}

func TestOldTreeIsReleasedAfterCommit(t *testing.T) {
	root := newRoot(t, hosttree.New())
	require.NoError(t, root.Render(counterTree("0")))
	first := root.Current()

	require.NoError(t, root.Render(counterTree("1")))
	second := root.Current()
	assert.NotSame(t, first, second)
	assert.Equal(t, first.ID(), second.ID())

	arena := fiber.ArenaOf(root)
	count := 0
	fiber.Walk(second, func(n *fiber.Node) bool {
		count++
		assert.Nil(t, arena.Alternate(n), "node %d still has an alternate", n.ID())
		assert.Same(t, n, arena.Current(n.ID()))
		return true
	})
	assert.Equal(t, 4, count)
	assert.Equal(t, count, arena.Len())
}
