// Package view provides the retained node tree board components render into,
// and the stylesheet and renderer that turn a tree into terminal output.
//
// Components describe what they show (boxes, text, inputs, buttons) with
// stable class names; styling is looked up by class, so themes can target
// "item-title" or "item-edit-button" without knowing how a card is built.
package view

import (
	"slices"
	"strings"
)

const classPrefix = "kanban-plugin__"

// C returns the namespaced form of a component class name.
func C(name string) string {
	return classPrefix + name
}

// Classes drops empty names so conditional modifiers can be written inline.
func Classes(names ...string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}

// If returns class when cond holds, "" otherwise.
func If(cond bool, class string) string {
	if cond {
		return class
	}
	return ""
}

// Kind is the type of a node.
type Kind int

const (
	KindBox    Kind = iota // children stacked vertically
	KindRow                // children side by side; the first child takes the slack
	KindText               // static text
	KindInput              // editable field; Text holds its value
	KindButton             // activatable control
)

// Node is one element of a rendered component.
type Node struct {
	Kind  Kind
	Class []string
	// Text is the text content, or the current value of an input.
	Text string
	// Raw, when set, is drawn instead of Text. Inputs use it to show their
	// widget (cursor, wrapping) while Text keeps the plain value.
	Raw string
	// Label is the accessible name of a control.
	Label string
	// Icon names a glyph from the renderer's icon set.
	Icon       string
	Focused    bool
	Attrs      map[string]string
	OnActivate func()
	Children   []*Node
}

// Box creates a vertical container.
func Box(class []string, children ...*Node) *Node {
	return &Node{Kind: KindBox, Class: class, Children: compact(children)}
}

// Row creates a horizontal container.
func Row(class []string, children ...*Node) *Node {
	return &Node{Kind: KindRow, Class: class, Children: compact(children)}
}

// Text creates a static text node.
func Text(class []string, text string) *Node {
	return &Node{Kind: KindText, Class: class, Text: text}
}

// Button creates an activatable control.
func Button(class []string, label, icon, text string, onActivate func()) *Node {
	return &Node{
		Kind:       KindButton,
		Class:      class,
		Label:      label,
		Icon:       icon,
		Text:       text,
		OnActivate: onActivate,
	}
}

// compact drops nil children so optional parts can be passed inline.
func compact(nodes []*Node) []*Node {
	return slices.DeleteFunc(nodes, func(n *Node) bool { return n == nil })
}

// HasClass reports whether the node carries class.
func (n *Node) HasClass(class string) bool {
	return n != nil && slices.Contains(n.Class, class)
}

// Focusable reports whether the node can take keyboard focus.
func (n *Node) Focusable() bool {
	return n != nil && (n.Kind == KindButton || n.Kind == KindInput)
}

// Find returns the first node in document order carrying class.
func (n *Node) Find(class string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.HasClass(class) {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindAll returns every node carrying class, in document order.
func (n *Node) FindAll(class string) []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c.HasClass(class) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Focusables returns the focusable nodes in document order.
func (n *Node) Focusables() []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if c.Focusable() {
			out = append(out, c)
		}
		return true
	})
	return out
}

// FocusedNode returns the focused node, if any.
func (n *Node) FocusedNode() *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.Focused {
			found = c
			return false
		}
		return true
	})
	return found
}

// Activate runs the node's action. It reports false when there is none.
func (n *Node) Activate() bool {
	if n == nil || n.OnActivate == nil {
		return false
	}
	n.OnActivate()
	return true
}

// Walk visits n and its descendants depth first until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// TextContent concatenates the text of n and its descendants, one line per
// text-bearing node.
func (n *Node) TextContent() string {
	var parts []string
	n.Walk(func(c *Node) bool {
		if c.Text != "" {
			parts = append(parts, c.Text)
		}
		return true
	})
	return strings.Join(parts, "\n")
}
