package fiber

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Props is the input data of a node.
type Props map[string]any

// Component renders a composite node into its children.
type Component func(c *ComponentContext, props Props) ([]*Element, error)

// Element is one entry of the declarative description handed to a Root.
type Element struct {
	Kind      Kind
	Type      string
	Key       string
	Props     Props
	Text      string
	Children  []*Element
	Component Component
}

// H describes a host element.
func H(typ string, props Props, children ...*Element) *Element {
	return &Element{Kind: KindHost, Type: typ, Props: props, Children: children}
}

// T describes a text leaf.
func T(text string) *Element {
	return &Element{Kind: KindText, Text: text}
}

// C describes a composite component identified by name.
func C(name string, fn Component, props Props) *Element {
	return &Element{Kind: KindComposite, Type: name, Component: fn, Props: props}
}

// WithKey sets the element key and returns the element.
func (e *Element) WithKey(key string) *Element {
	e.Key = key
	return e
}

func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	if e.Kind == KindText {
		return fmt.Sprintf("%q", e.Text)
	}
	if e.Key != "" {
		return fmt.Sprintf("<%s key=%s>", e.Type, e.Key)
	}
	return fmt.Sprintf("<%s>", e.Type)
}

// textOnly reports whether every child is text, returning the joined content.
func textOnly(children []*Element) (string, bool) {
	if len(children) == 0 {
		return "", false
	}
	var sb strings.Builder
	for _, c := range children {
		if c == nil || c.Kind != KindText {
			return "", false
		}
		sb.WriteString(c.Text)
	}
	return sb.String(), true
}

func (p Props) sortedKeys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Fingerprint hashes the props so unchanged inputs can be detected without a
// key-by-key comparison. Values are hashed through their %v form.
func (p Props) Fingerprint() uint64 {
	d := xxhash.New()
	for _, k := range p.sortedKeys() {
		d.WriteString(k)
		d.WriteString("\x00")
		fmt.Fprintf(d, "%T:%v", p[k], p[k])
		d.WriteString("\x01")
	}
	return d.Sum64()
}

// Diff returns the keys whose value changed between p and next, mapping removed
// keys to nil. A nil result means no change.
func (p Props) Diff(next Props) Props {
	var payload Props
	set := func(k string, v any) {
		if payload == nil {
			payload = Props{}
		}
		payload[k] = v
	}
	for k, old := range p {
		nv, ok := next[k]
		if !ok {
			set(k, nil)
			continue
		}
		if fmt.Sprintf("%T:%v", old, old) != fmt.Sprintf("%T:%v", nv, nv) {
			set(k, nv)
		}
	}
	for k, nv := range next {
		if _, ok := p[k]; !ok {
			set(k, nv)
		}
	}
	return payload
}

func (p Props) clone() Props {
	if p == nil {
		return nil
	}
	c := make(Props, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}
