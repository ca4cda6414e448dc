// Package html maps HTML documents onto the content tree.
package html

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parser represents an HTML parser
type Parser struct {
	// LoadCSS fetches the stylesheet of a <link rel="stylesheet">. Links are
	// ignored when it is nil; a failing load skips the link.
	LoadCSS func(href string) (string, error)
}

// converter holds the state of one Parse call.
type converter struct {
	*Parser
	pre    int
	sheets []string
}

// NewParser creates a new HTML parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses HTML from a string
func (p *Parser) ParseString(src string) (*content.Document, error) {
	return p.Parse(strings.NewReader(src))
}

// Parse parses HTML from an io.Reader and returns the numbered content tree.
// <style> elements become document stylesheets.
func (p *Parser) Parse(r io.Reader) (*content.Document, error) {
	node, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("html: parse: %w", err)
	}

	root := content.Doc()
	c := &converter{Parser: p}
	c.convertChildren(node, root)
	trimBlockSpace(root)

	doc, err := content.NewDocument(root)
	if err != nil {
		return nil, err
	}
	doc.Stylesheets = c.sheets
	return doc, nil
}

// convertChildren converts the children of n and appends them to parent.
func (p *converter) convertChildren(n *html.Node, parent *content.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.convertNode(c, parent)
	}
}

// convertNode converts an html.Node into content nodes under parent.
func (p *converter) convertNode(n *html.Node, parent *content.Node) {
	switch n.Type {
	case html.DocumentNode:
		p.convertChildren(n, parent)
		return
	case html.TextNode:
		if t := p.text(n.Data); t != "" {
			parent.Append(content.Text(t))
		}
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Html, atom.Body, atom.Head:
		p.convertChildren(n, parent)
		return
	case atom.Style:
		var buf strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				buf.WriteString(c.Data)
			}
		}
		p.sheets = append(p.sheets, buf.String())
		return
	case atom.Link:
		p.link(n)
		return
	case atom.Script, atom.Title, atom.Meta, atom.Template, atom.Noscript, atom.Hr, atom.Base:
		return
	case atom.Svg:
		g, err := inlineGraphic(n)
		if err == nil {
			parent.Append(attrs(g, n))
		}
		return
	}

	node := p.element(n)
	if node == nil {
		return
	}
	parent.Append(node)
	if node.Kind.IsBreak() || node.Kind == content.KindLineBreak {
		return
	}
	if n.DataAtom == atom.Pre {
		p.pre++
		defer func() { p.pre-- }()
	}
	p.convertChildren(n, node)
}

// link collects an external stylesheet in document order.
func (p *converter) link(n *html.Node) {
	rel, _ := attr(n, "rel")
	href, _ := attr(n, "href")
	if p.LoadCSS == nil || href == "" || !strings.Contains(strings.ToLower(rel), "stylesheet") {
		return
	}
	if css, err := p.LoadCSS(href); err == nil {
		p.sheets = append(p.sheets, css)
	}
}

// element creates the content node for an element, or nil to drop it.
func (p *converter) element(n *html.Node) *content.Node {
	tag := strings.ToLower(n.Data)
	cls, _ := attr(n, "class")
	if tag == "div" || tag == "span" {
		for _, c := range strings.Fields(cls) {
			switch c {
			case "page-break":
				return content.PageBreak()
			case "column-break":
				return content.ColumnBreak()
			}
		}
	}

	var node *content.Node
	switch tag {
	case "page-break":
		return content.PageBreak()
	case "column-break":
		return content.ColumnBreak()
	case "br":
		return content.LineBreak()
	case "section":
		node = content.Section()
	case "page":
		node = content.Page()
	case "p", "h1", "h2", "h3", "h4", "h5", "h6", "pre":
		node = content.P()
	case "span", "b", "i", "strong", "em", "a", "code", "u", "small", "sub", "sup",
		"label", "cite", "kbd", "abbr", "mark", "q", "s", "var", "font":
		node = content.Span()
	case "ol":
		node = content.OL()
	case "ul":
		node = content.UL()
	case "li":
		node = content.LI()
	case "dl":
		node = content.DL()
	case "dt":
		node = content.DT()
	case "dd":
		node = content.DD()
	case "img":
		src, ok := attr(n, "src")
		if !ok {
			return nil
		}
		node = content.Image(src)
		sizeAttrs(node, n)
	case "object", "embed":
		src, ok := attr(n, "data")
		if !ok {
			src, ok = attr(n, "src")
		}
		if !ok {
			return nil
		}
		node = content.Graphic(src)
		sizeAttrs(node, n)
	case "component":
		node = content.Component()
	default:
		node = content.Div()
	}
	node.Tag = tag
	return attrs(node, n)
}

// text collapses white space outside <pre> and normalises to NFC.
func (p *converter) text(s string) string {
	if p.pre > 0 {
		return text.Normalize(strings.ReplaceAll(s, "\r\n", "\n"))
	}
	return text.Normalize(text.CollapseSpace(s))
}

// attrs copies class, id, style and the remaining attributes onto node.
func attrs(node *content.Node, n *html.Node) *content.Node {
	for _, a := range n.Attr {
		switch a.Key {
		case "class":
			node.Classed(a.Val)
		case "id":
			node.Named(a.Val)
		case "style":
			node.Styled(a.Val)
		default:
			node.WithAttr(a.Key, a.Val)
		}
	}
	return node
}

// sizeAttrs turns width/height attributes (CSS pixels) into declarations.
// Inline style declared later in the list wins.
func sizeAttrs(node *content.Node, n *html.Node) {
	var decls []string
	for _, key := range []string{"width", "height"} {
		if v, ok := attr(n, key); ok && v != "" {
			v = strings.TrimSpace(v)
			if !strings.HasSuffix(v, "%") && !strings.HasSuffix(v, "px") {
				v += "px"
			}
			decls = append(decls, key+": "+v)
		}
	}
	if len(decls) > 0 {
		node.Styled(strings.Join(decls, "; "))
	}
}

// inlineGraphic turns an inline <svg> element into a Graphic whose source
// is a data URI holding the rendered markup.
func inlineGraphic(n *html.Node) (*content.Node, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return nil, err
	}
	src := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	g := content.Graphic(src)
	g.Tag = "svg"
	sizeAttrs(g, n)
	return g, nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func isInlineKind(k content.Kind) bool {
	switch k {
	case content.KindText, content.KindSpan, content.KindLineBreak,
		content.KindImage, content.KindGraphic, content.KindComponent:
		return true
	}
	return false
}

// trimBlockSpace removes white-space-only text that sits next to block
// children or at the edges of a container, recursing into the tree. The
// contents of <pre> are left alone.
func trimBlockSpace(n *content.Node) {
	if n.Tag == "pre" {
		return
	}
	kept := make([]*content.Node, 0, len(n.Children))
	for i, c := range n.Children {
		if c.Kind == content.KindText && strings.TrimSpace(c.Text) == "" {
			prevInline := i > 0 && isInlineKind(n.Children[i-1].Kind)
			nextInline := i+1 < len(n.Children) && isInlineKind(n.Children[i+1].Kind)
			if !prevInline || !nextInline {
				continue
			}
		}
		trimBlockSpace(c)
		kept = append(kept, c)
	}
	n.Children = kept
}
