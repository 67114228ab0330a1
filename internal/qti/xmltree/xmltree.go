// Package xmltree parses XML into a generic attributed tree. QTI content is
// mapped onto typed structs in a second pass; keeping the first pass generic
// means the "one child or many" ambiguity is resolved in exactly one place
// (Node.All) instead of per call site.
package xmltree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Node is one XML element: local tag name, attributes, direct text and
// child elements in document order. Namespace prefixes are stripped from
// element and attribute names; the root keeps its namespace in the
// "xmlns" attribute so callers can still inspect it.
type Node struct {
	Name     string            `json:"name"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// Parse decodes b into a tree rooted at the document element.
func Parse(b []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(b))
	var root *Node
	var stack []*Node
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" {
					// prefixed namespace declaration, not content
					continue
				}
				if n.Attrs == nil {
					n.Attrs = map[string]string{}
				}
				if _, ok := n.Attrs[a.Name.Local]; !ok {
					n.Attrs[a.Name.Local] = a.Value
				}
			}
			if t.Name.Space != "" {
				if n.Attrs == nil {
					n.Attrs = map[string]string{}
				}
				if _, ok := n.Attrs["xmlns"]; !ok {
					n.Attrs["xmlns"] = t.Name.Space
				}
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			} else if root == nil {
				root = n
			} else {
				return nil, fmt.Errorf("malformed xml: multiple root elements")
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("malformed xml: unbalanced end element %s", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, fmt.Errorf("malformed xml: no root element")
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("malformed xml: unclosed element %s", stack[len(stack)-1].Name)
	}
	return root, nil
}

// Attr returns the named attribute or "".
func (n *Node) Attr(name string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// HasAttr reports whether the attribute is present, even if empty.
func (n *Node) HasAttr(name string) bool {
	if n == nil || n.Attrs == nil {
		return false
	}
	_, ok := n.Attrs[name]
	return ok
}

// First returns the first direct child with the given local name, or nil.
func (n *Node) First(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// All returns every direct child with the given local name, always as a
// slice (possibly empty). All single-vs-repeated normalization goes
// through here.
func (n *Node) All(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// TrimmedText returns the element's own text content, trimmed.
func (n *Node) TrimmedText() string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(n.Text)
}

// Walk visits n and every descendant in document order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
