package fiber

type hooks struct {
	before  []func() error
	after   []func() error
	cleanup []func()
}

// ComponentContext is handed to a Component while it renders. State reads go
// to the work-in-progress node; SetState and Update may also be called later,
// from event handlers, and queue an update on the root.
type ComponentContext struct {
	root *Root
	id   ID
	node *Node
}

func (c *ComponentContext) ID() ID { return c.id }

// Children returns the elements nested under the component's element.
func (c *ComponentContext) Children() []*Element {
	if c.node == nil {
		return nil
	}
	return c.node.elements
}

// State returns the value stored under key, initialising it on first use.
func (c *ComponentContext) State(key string, initial any) any {
	if c.node == nil {
		return initial
	}
	if v, ok := c.node.state[key]; ok {
		return v
	}
	if c.node.state == nil {
		c.node.state = map[string]any{}
	}
	c.node.state[key] = initial
	return initial
}

// SetState queues a replacement of the value under key.
func (c *ComponentContext) SetState(key string, v any) {
	c.root.enqueueState(c.id, key, func(any) any { return v })
}

// Update queues fn to derive the next value under key from the previous one.
func (c *ComponentContext) Update(key string, fn func(prev any) any) {
	c.root.enqueueState(c.id, key, fn)
}

// BeforeCommit registers fn to run in the before-mutation pass of the commit
// that includes this render.
func (c *ComponentContext) BeforeCommit(fn func() error) {
	if c.node != nil {
		c.node.hooks.before = append(c.node.hooks.before, fn)
	}
}

// AfterCommit registers fn to run in the after-mutation pass.
func (c *ComponentContext) AfterCommit(fn func() error) {
	if c.node != nil {
		c.node.hooks.after = append(c.node.hooks.after, fn)
	}
}

// OnUnmount registers fn to run when the component is deleted.
func (c *ComponentContext) OnUnmount(fn func()) {
	if c.node != nil {
		c.node.hooks.cleanup = append(c.node.hooks.cleanup, fn)
	}
}
