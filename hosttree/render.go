package hosttree

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/valyala/quicktemplate"
)

// Snap is a plain copy of a subtree, convenient for comparisons.
type Snap struct {
	Type     string
	Text     string
	Props    map[string]string
	Children []Snap
}

// Dump copies the mounted tree. The zero Snap means nothing is mounted.
func (t *Tree) Dump() Snap {
	if t.root == nil {
		return Snap{}
	}
	return t.root.dump()
}

func (i *Instance) dump() Snap {
	s := Snap{Type: i.Type, Text: i.Text}
	for _, k := range attrKeys(i.Props) {
		if s.Props == nil {
			s.Props = map[string]string{}
		}
		s.Props[k] = fmt.Sprint(i.Props[k])
	}
	for _, c := range i.Children {
		s.Children = append(s.Children, c.dump())
	}
	return s
}

// WriteHTML renders the mounted tree as markup. The root container itself is
// not rendered, only what is mounted in it.
func (t *Tree) WriteHTML(w io.Writer) {
	if t.root == nil {
		return
	}
	qw := quicktemplate.AcquireWriter(w)
	defer quicktemplate.ReleaseWriter(qw)
	for _, c := range t.root.Children {
		c.writeHTML(qw)
	}
}

// HTML is WriteHTML into a string.
func (t *Tree) HTML() string {
	var buf bytes.Buffer
	t.WriteHTML(&buf)
	return buf.String()
}

func (i *Instance) writeHTML(qw *quicktemplate.Writer) {
	if i.Kind == fiber.KindText {
		qw.E().S(i.Text)
		return
	}
	qw.N().S("<")
	qw.N().S(i.Type)
	for _, k := range attrKeys(i.Props) {
		qw.N().S(" ")
		qw.N().S(k)
		qw.N().S(`="`)
		qw.E().S(fmt.Sprint(i.Props[k]))
		qw.N().S(`"`)
	}
	qw.N().S(">")
	qw.E().S(i.Text)
	for _, c := range i.Children {
		c.writeHTML(qw)
	}
	qw.N().S("</")
	qw.N().S(i.Type)
	qw.N().S(">")
}

// attrKeys returns the renderable prop keys in order. Functions and nested
// structures are not attributes.
func attrKeys(p fiber.Props) []string {
	keys := make([]string, 0, len(p))
	for k, v := range p {
		switch v.(type) {
		case string, bool, int, int64, float64, uint, uint64:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
