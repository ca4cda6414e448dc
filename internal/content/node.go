// Package content defines the source tree consumed by the layout engine.
package content

import (
	"strings"
)

// Kind identifies the variant of a content node.
type Kind int

const (
	KindDocument Kind = iota
	KindSection
	KindPage
	KindDiv
	KindParagraph
	KindSpan
	KindText
	KindLineBreak
	KindPageBreak
	KindColumnBreak
	KindOrderedList
	KindUnorderedList
	KindListItem
	KindDefinitionList
	KindDefinitionTerm
	KindDefinitionItem
	KindImage
	KindGraphic
	KindComponent
)

var kindNames = [...]string{
	KindDocument:       "Document",
	KindSection:        "Section",
	KindPage:           "Page",
	KindDiv:            "Div",
	KindParagraph:      "Paragraph",
	KindSpan:           "Span",
	KindText:           "Text",
	KindLineBreak:      "LineBreak",
	KindPageBreak:      "PageBreak",
	KindColumnBreak:    "ColumnBreak",
	KindOrderedList:    "ListOrdered",
	KindUnorderedList:  "ListUnordered",
	KindListItem:       "ListItem",
	KindDefinitionList: "ListDefinition",
	KindDefinitionTerm: "ListDefinitionTerm",
	KindDefinitionItem: "ListDefinitionItem",
	KindImage:          "Image",
	KindGraphic:        "Graphic",
	KindComponent:      "Component",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsList reports whether k is one of the list container kinds.
func (k Kind) IsList() bool {
	return k == KindOrderedList || k == KindUnorderedList || k == KindDefinitionList
}

// IsSection reports whether nodes of kind k start their own page sequence.
func (k Kind) IsSection() bool {
	return k == KindSection || k == KindPage
}

// IsBreak reports whether k is an explicit page or column break.
func (k Kind) IsBreak() bool {
	return k == KindPageBreak || k == KindColumnBreak
}

// NodeID addresses a node inside its Document. IDs are assigned in document
// (pre-)order, so comparing two IDs compares document positions.
type NodeID int

// NoNode is the zero handle; it never addresses a node.
const NoNode NodeID = -1

// Node is a single element of the content tree.
type Node struct {
	ID        NodeID
	Kind      Kind
	Tag       string
	Text      string
	Name      string
	Classes   []string
	StyleText string
	Attrs     map[string]string
	Children  []*Node
}

// New returns a node of the given kind with the given children.
func New(kind Kind, children ...*Node) *Node {
	return &Node{ID: NoNode, Kind: kind, Children: children}
}

// Styled appends inline declarations to the node and returns it.
func (n *Node) Styled(decls string) *Node {
	decls = strings.TrimSpace(decls)
	if decls == "" {
		return n
	}
	if n.StyleText != "" && !strings.HasSuffix(strings.TrimSpace(n.StyleText), ";") {
		n.StyleText += ";"
	}
	n.StyleText += decls
	return n
}

// Classed adds space separated class names.
func (n *Node) Classed(classes string) *Node {
	n.Classes = append(n.Classes, strings.Fields(classes)...)
	return n
}

// Named sets the node's identifier (the HTML id attribute).
func (n *Node) Named(name string) *Node {
	n.Name = name
	return n
}

// WithAttr sets an attribute.
func (n *Node) WithAttr(key, value string) *Node {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = value
	return n
}

// Attr returns an attribute value.
func (n *Node) Attr(key string) (string, bool) {
	v, ok := n.Attrs[key]
	return v, ok
}

// HasClass reports whether the node carries class c.
func (n *Node) HasClass(c string) bool {
	for _, have := range n.Classes {
		if have == c {
			return true
		}
	}
	return false
}

// Append adds children and returns the node.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Builders for the common node kinds.

func Doc(children ...*Node) *Node        { return New(KindDocument, children...) }
func Section(children ...*Node) *Node    { return New(KindSection, children...) }
func Page(children ...*Node) *Node       { return New(KindPage, children...) }
func Div(children ...*Node) *Node        { return New(KindDiv, children...) }
func P(children ...*Node) *Node          { return New(KindParagraph, children...) }
func Span(children ...*Node) *Node       { return New(KindSpan, children...) }
func OL(children ...*Node) *Node         { return New(KindOrderedList, children...) }
func UL(children ...*Node) *Node         { return New(KindUnorderedList, children...) }
func LI(children ...*Node) *Node         { return New(KindListItem, children...) }
func DL(children ...*Node) *Node         { return New(KindDefinitionList, children...) }
func DT(children ...*Node) *Node         { return New(KindDefinitionTerm, children...) }
func DD(children ...*Node) *Node         { return New(KindDefinitionItem, children...) }
func LineBreak() *Node                   { return New(KindLineBreak) }
func PageBreak() *Node                   { return New(KindPageBreak) }
func ColumnBreak() *Node                 { return New(KindColumnBreak) }
func Component(children ...*Node) *Node  { return New(KindComponent, children...) }

// Text returns a text literal.
func Text(s string) *Node {
	n := New(KindText)
	n.Text = s
	return n
}

// Image returns an inline image placeholder for src.
func Image(src string) *Node {
	return New(KindImage).WithAttr("src", src)
}

// Graphic returns an SVG/graphic leaf for src.
func Graphic(src string) *Node {
	return New(KindGraphic).WithAttr("src", src)
}
