// Package describe reads description trees from YAML. A document is one
// element; a stream of documents is a sequence of renders.
//
//	type: div
//	props: {class: counter}
//	children:
//	  - type: p
//	    children: ["0"]
//	  - {type: button, children: [click me]}
//
// A bare string child is a text node. Composite elements name a component
// from the Registry and receive their children through
// ComponentContext.Children.
package describe

import (
	"errors"
	"fmt"
	"io"

	"github.com/delaneyj/fiberparty/fiber"
	"gopkg.in/yaml.v3"
)

var ErrUnknownComponent = errors.New("describe: unknown component")

// Registry maps component names to implementations.
type Registry map[string]fiber.Component

// Fragment renders its children unchanged.
func Fragment(c *fiber.ComponentContext, _ fiber.Props) ([]*fiber.Element, error) {
	return c.Children(), nil
}

// DefaultRegistry knows Fragment.
func DefaultRegistry() Registry {
	return Registry{"Fragment": Fragment}
}

// Spec is the YAML form of an element.
type Spec struct {
	Kind     string         `yaml:"kind,omitempty"`
	Type     string         `yaml:"type,omitempty"`
	Key      string         `yaml:"key,omitempty"`
	Text     string         `yaml:"text,omitempty"`
	Props    map[string]any `yaml:"props,omitempty"`
	Children []Spec         `yaml:"children,omitempty"`
}

func (s *Spec) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		s.Kind = "text"
		s.Text = value.Value
		return nil
	}
	type plain Spec
	return value.Decode((*plain)(s))
}

// Element converts s into a description, resolving components in reg.
func (s Spec) Element(reg Registry) (*fiber.Element, error) {
	kind, ok := fiber.ParseKind(s.Kind)
	if !ok || kind == fiber.KindHostRoot {
		return nil, fmt.Errorf("describe: invalid kind %q", s.Kind)
	}
	el := &fiber.Element{Kind: kind, Type: s.Type, Key: s.Key, Text: s.Text}
	if len(s.Props) > 0 {
		el.Props = fiber.Props(s.Props)
	}
	switch kind {
	case fiber.KindText:
		return el, nil
	case fiber.KindHost:
		if s.Type == "" {
			return nil, errors.New("describe: host element without type")
		}
	case fiber.KindComposite:
		fn, ok := reg[s.Type]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownComponent, s.Type)
		}
		el.Component = fn
	}
	for i, c := range s.Children {
		child, err := c.Element(reg)
		if err != nil {
			return nil, fmt.Errorf("child %d of %s: %w", i, s.Type, err)
		}
		el.Children = append(el.Children, child)
	}
	return el, nil
}

// Decode reads every document in r.
func Decode(r io.Reader, reg Registry) ([]*fiber.Element, error) {
	dec := yaml.NewDecoder(r)
	var out []*fiber.Element
	for {
		var s Spec
		err := dec.Decode(&s)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("describe: document %d: %w", len(out), err)
		}
		el, err := s.Element(reg)
		if err != nil {
			return nil, fmt.Errorf("describe: document %d: %w", len(out), err)
		}
		out = append(out, el)
	}
}
