package document

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// NodeType identifies the kind of a [Node].
type NodeType int

const (
	RootNode NodeType = iota
	ElementNode
	TextNode
	CommentNode
	DirectiveNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "tag"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case DirectiveNode:
		return "directive"
	}

	return "root"
}

// voidElements never have children, so their start tags are never pushed on
// the open element stack.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

// Node is one entry of the element tree.
type Node struct {
	Type NodeType
	// Name is the lower-cased tag name of an element.
	Name string
	// Attribs holds the attributes of an element, keyed by lower-cased name.
	Attribs  map[string]string
	Data     string
	Children []*Node
	Parent   *Node
}

func (n *Node) appendChild(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

// Document is a parsed HTML document.
type Document struct {
	Root *Node
}

// Parse builds an element tree from r.
//
// Unlike a full HTML5 tree construction, no implied elements are inserted: a
// fragment without <head> has no head element. End tags close the nearest
// open element with the same name and are ignored when none is open.
func Parse(r io.Reader) (*Document, error) {
	z := html.NewTokenizer(r)
	root := &Node{Type: RootNode}
	stack := []*Node{root}

	for {
		tt := z.Next()
		top := stack[len(stack)-1]

		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return &Document{Root: root}, nil
			}

			return nil, fmt.Errorf("parse html: %w", z.Err())

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			el := &Node{
				Type:    ElementNode,
				Name:    strings.ToLower(tok.Data),
				Attribs: make(map[string]string, len(tok.Attr)),
			}
			for _, attr := range tok.Attr {
				el.Attribs[strings.ToLower(attr.Key)] = attr.Val
			}
			top.appendChild(el)

			if tt == html.StartTagToken && !voidElements[el.Name] {
				stack = append(stack, el)
			}

		case html.EndTagToken:
			name := strings.ToLower(z.Token().Data)
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Name == name {
					stack = stack[:i]

					break
				}
			}

		case html.TextToken:
			if data := z.Token().Data; data != "" {
				top.appendChild(&Node{Type: TextNode, Data: data})
			}

		case html.CommentToken:
			top.appendChild(&Node{Type: CommentNode, Data: z.Token().Data})

		case html.DoctypeToken:
			top.appendChild(&Node{Type: DirectiveNode, Name: "!doctype", Data: z.Token().Data})
		}
	}
}

// ParseString parses an HTML string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Elements returns every element named tag in document order. The match is
// case-insensitive; no match yields an empty slice.
func (d *Document) Elements(tag string) []*Node {
	tag = strings.ToLower(strings.TrimSpace(tag))
	out := []*Node{}
	if d == nil || d.Root == nil {
		return out
	}

	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			if c.Type == ElementNode && c.Name == tag {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(d.Root)

	return out
}

// Fields returns the node as a generic mapping with the keys "type", "name",
// "attribs", "data" and "children". Assertion templates are written against
// this shape, e.g. {"name": "meta", "attribs": {"name": "robots"}}.
func (n *Node) Fields() map[string]any {
	f := map[string]any{"type": n.Type.String()}

	switch n.Type {
	case ElementNode:
		f["name"] = n.Name
		f["attribs"] = n.AttributeMap()
		f["children"] = n.ChildList()
	case DirectiveNode:
		f["name"] = n.Name
		f["data"] = n.Data
	default:
		f["data"] = n.Data
	}

	return f
}

// AttributeMap returns the node's attributes as a generic mapping. Nodes
// without attributes yield an empty mapping.
func (n *Node) AttributeMap() map[string]any {
	out := make(map[string]any, len(n.Attribs))
	for k, v := range n.Attribs {
		out[k] = v
	}

	return out
}

// ChildList returns the [Node.Fields] view of every child node.
func (n *Node) ChildList() []any {
	out := make([]any, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c.Fields())
	}

	return out
}

// Collection returns the [Node.Fields] view of nodes.
func Collection(nodes []*Node) []any {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Fields())
	}

	return out
}
