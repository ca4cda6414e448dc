package style

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/parser/css"
)

// Resolver computes the style of content nodes. Implementations must be
// pure: the same node and parent style always give the same result.
type Resolver interface {
	Resolve(doc *content.Document, n *content.Node, parent *Style) (*Style, error)
	PageSetup(doc *content.Document, name string) (PageRule, bool)
}

// ErrInvalidValue is wrapped by Resolve for declarations whose value could
// not be interpreted. The returned style is still usable; the offending
// declarations are skipped.
var ErrInvalidValue = errors.New("style: invalid value")

// Specificity represents the specificity of a CSS selector
type Specificity struct {
	ID      int
	Class   int
	Element int
}

// StyleProperty represents a cascaded style property
type StyleProperty struct {
	Name        string
	Value       string
	Important   bool
	Source      Source
	Specificity Specificity
}

// Source represents the origin of a style property
type Source int

const (
	SourceUserAgent Source = iota
	SourceUser
	SourceAuthor
	SourceInline
)

// ComputedStyle maps property names to the declaration that won the cascade.
type ComputedStyle map[string]StyleProperty

// Engine is the default Resolver. It cascades the user-agent stylesheet,
// user stylesheets, the document's own stylesheets and inline declarations.
type Engine struct {
	userAgentStyles *css.Stylesheet
	userStyles      []*css.Stylesheet

	mu     sync.Mutex
	author map[*content.Document][]*css.Stylesheet
}

// NewEngine creates a style engine with the given user stylesheets.
func NewEngine(userStyles ...*css.Stylesheet) *Engine {
	return &Engine{
		userAgentStyles: defaultUserAgentStyles(),
		userStyles:      userStyles,
		author:          make(map[*content.Document][]*css.Stylesheet),
	}
}

// AddStylesheet adds a user stylesheet to the style engine
func (e *Engine) AddStylesheet(stylesheet *css.Stylesheet) {
	e.userStyles = append(e.userStyles, stylesheet)
}

// Resolve computes the style of n given the computed style of its parent.
func (e *Engine) Resolve(doc *content.Document, n *content.Node, parent *Style) (*Style, error) {
	if n == nil {
		return nil, errors.New("style: nil node")
	}
	s := Inherit(parent)
	s.Display = defaultDisplay(n.Kind)
	if n.Kind == content.KindText {
		return s, nil
	}

	cascaded := e.Cascade(doc, n)
	var errs []error
	// font-size first: em lengths of every other property depend on it.
	if p, ok := cascaded["font-size"]; ok {
		if err := applyProperty(s, parent, p.Name, p.Value); err != nil {
			errs = append(errs, err)
		}
	}
	for _, name := range sortedNames(cascaded) {
		if name == "font-size" {
			continue
		}
		p := cascaded[name]
		if err := applyProperty(s, parent, p.Name, p.Value); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return s, fmt.Errorf("node %d (%s): %w", n.ID, n.Kind, errors.Join(errs...))
	}
	return s, nil
}

// Cascade returns the winning declaration for every property set on n.
func (e *Engine) Cascade(doc *content.Document, n *content.Node) ComputedStyle {
	style := make(ComputedStyle)

	e.applyStylesheet(style, doc, n, e.userAgentStyles, SourceUserAgent)
	for _, sheet := range e.userStyles {
		e.applyStylesheet(style, doc, n, sheet, SourceUser)
	}
	for _, sheet := range e.authorStyles(doc) {
		e.applyStylesheet(style, doc, n, sheet, SourceAuthor)
	}
	e.applyInlineStyles(style, n)

	return style
}

// PageSetup merges the unnamed @page rules with the rules named name.
func (e *Engine) PageSetup(doc *content.Document, name string) (PageRule, bool) {
	var sheets []*css.Stylesheet
	sheets = append(sheets, e.userStyles...)
	sheets = append(sheets, e.authorStyles(doc)...)

	rule := PageRule{Name: name}
	var defaults, named bool
	for _, sheet := range sheets {
		for _, pr := range sheet.Pages {
			if pr.Name == "" {
				rule.apply(pr.Declarations)
				defaults = true
			}
		}
	}
	if name == "" {
		return rule, defaults
	}
	for _, sheet := range sheets {
		for _, pr := range sheet.Pages {
			if pr.Name == name {
				rule.apply(pr.Declarations)
				named = true
			}
		}
	}
	return rule, named
}

func (e *Engine) authorStyles(doc *content.Document) []*css.Stylesheet {
	if doc == nil || len(doc.Stylesheets) == 0 {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if sheets, ok := e.author[doc]; ok {
		return sheets
	}
	parser := css.NewParser()
	sheets := make([]*css.Stylesheet, 0, len(doc.Stylesheets))
	for _, src := range doc.Stylesheets {
		sheet, err := parser.ParseString(src)
		if err != nil {
			continue
		}
		sheets = append(sheets, sheet)
	}
	e.author[doc] = sheets
	return sheets
}

// applyStylesheet applies styles from a stylesheet to a node
func (e *Engine) applyStylesheet(style ComputedStyle, doc *content.Document, n *content.Node, stylesheet *css.Stylesheet, source Source) {
	if stylesheet == nil {
		return
	}
	for _, rule := range stylesheet.Rules {
		for _, selector := range rule.Selectors {
			if selectorMatches(doc, n, selector) {
				applyDeclarations(style, rule.Declarations, calculateSpecificity(selector), source)
			}
		}
	}
}

// applyInlineStyles applies the style attribute of a node
func (e *Engine) applyInlineStyles(style ComputedStyle, n *content.Node) {
	if strings.TrimSpace(n.StyleText) == "" {
		return
	}
	decls := css.NewParser().ParseDeclarations(n.StyleText)
	applyDeclarations(style, decls, Specificity{ID: 1}, SourceInline)
}

// applyDeclarations merges declarations into style. Importance is compared
// first, then origin, then specificity; ties go to the later declaration.
func applyDeclarations(style ComputedStyle, declarations []*css.Declaration, specificity Specificity, source Source) {
	for _, decl := range declarations {
		property := decl.Property
		existing, exists := style[property]

		if exists {
			if existing.Important != decl.Important {
				if existing.Important {
					continue
				}
			} else if existing.Source != source {
				if source < existing.Source {
					continue
				}
			} else if compareSpecificity(specificity, existing.Specificity) < 0 {
				continue
			}
		}

		style[property] = StyleProperty{
			Name:        property,
			Value:       decl.Value,
			Important:   decl.Important,
			Source:      source,
			Specificity: specificity,
		}
	}
}

// selectorMatches checks if a node matches a CSS selector with descendant
// combinators.
func selectorMatches(doc *content.Document, n *content.Node, selector string) bool {
	parts := strings.Fields(selector)
	if len(parts) == 0 || n == nil {
		return false
	}
	if !matchCompoundSelector(n, parts[len(parts)-1]) {
		return false
	}
	if len(parts) == 1 {
		return true
	}
	if doc == nil {
		return false
	}

	current := doc.Parent(n.ID)
	for i := len(parts) - 2; i >= 0; i-- {
		found := false
		for anc := current; anc != nil; anc = doc.Parent(anc.ID) {
			if matchCompoundSelector(anc, parts[i]) {
				found = true
				current = doc.Parent(anc.ID)
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// matchCompoundSelector matches a single compound selector against a node.
// Compound selectors can be forms like:
//   - tag
//   - .class
//   - #id
//   - tag#id.class1.class2
//
// It does not support attributes, pseudo-classes, or combinators.
func matchCompoundSelector(n *content.Node, sel string) bool {
	if n == nil || n.Kind == content.KindText || sel == "" {
		return false
	}

	var wantTag string
	var wantID string
	var wantClasses []string

	i := 0
	if i < len(sel) && sel[i] != '.' && sel[i] != '#' {
		j := i
		for j < len(sel) && sel[j] != '#' && sel[j] != '.' {
			j++
		}
		wantTag = strings.ToLower(sel[i:j])
		i = j
	}
	for i < len(sel) {
		if sel[i] == '#' || sel[i] == '.' {
			j := i + 1
			for j < len(sel) && sel[j] != '.' && sel[j] != '#' {
				j++
			}
			if sel[i] == '#' {
				wantID = sel[i+1 : j]
			} else {
				wantClasses = append(wantClasses, sel[i+1:j])
			}
			i = j
			continue
		}
		return false
	}

	if wantTag != "" && wantTag != "*" && wantTag != TagOf(n) {
		return false
	}
	if wantID != "" && n.Name != wantID {
		return false
	}
	for _, need := range wantClasses {
		if !n.HasClass(need) {
			return false
		}
	}
	return true
}

// calculateSpecificity calculates the specificity of a CSS selector
func calculateSpecificity(selector string) Specificity {
	specificity := Specificity{}

	specificity.ID = strings.Count(selector, "#")
	specificity.Class = strings.Count(selector, ".") +
		strings.Count(selector, "[") +
		strings.Count(selector, ":")
	for _, part := range strings.Fields(selector) {
		if part[0] != '.' && part[0] != '#' && part[0] != '*' {
			specificity.Element++
		}
	}

	return specificity
}

// compareSpecificity compares two specificities
func compareSpecificity(a, b Specificity) int {
	if a.ID != b.ID {
		return a.ID - b.ID
	}
	if a.Class != b.Class {
		return a.Class - b.Class
	}
	return a.Element - b.Element
}

// TagOf returns the element name of n, deriving one from its kind for nodes
// built in code.
func TagOf(n *content.Node) string {
	if n.Tag != "" {
		return strings.ToLower(n.Tag)
	}
	switch n.Kind {
	case content.KindDocument:
		return "body"
	case content.KindSection:
		return "section"
	case content.KindPage:
		return "page"
	case content.KindParagraph:
		return "p"
	case content.KindSpan:
		return "span"
	case content.KindOrderedList:
		return "ol"
	case content.KindUnorderedList:
		return "ul"
	case content.KindListItem:
		return "li"
	case content.KindDefinitionList:
		return "dl"
	case content.KindDefinitionTerm:
		return "dt"
	case content.KindDefinitionItem:
		return "dd"
	case content.KindImage:
		return "img"
	case content.KindGraphic:
		return "svg"
	case content.KindLineBreak:
		return "br"
	}
	return "div"
}

func defaultDisplay(k content.Kind) Display {
	switch k {
	case content.KindSpan, content.KindText, content.KindLineBreak,
		content.KindImage, content.KindGraphic, content.KindComponent:
		return DisplayInline
	case content.KindListItem:
		return DisplayListItem
	}
	return DisplayBlock
}

// defaultUserAgentStyles returns the default user agent stylesheet
func defaultUserAgentStyles() *css.Stylesheet {
	parser := css.NewParser()
	stylesheet, _ := parser.ParseString(`
		h1 { font-size: 2em; font-weight: bold; margin: 0.67em 0; }
		h2 { font-size: 1.5em; font-weight: bold; margin: 0.75em 0; }
		h3 { font-size: 1.17em; font-weight: bold; margin: 0.83em 0; }
		h4 { font-weight: bold; margin: 1.12em 0; }
		h5 { font-size: 0.83em; font-weight: bold; margin: 1.5em 0; }
		h6 { font-size: 0.75em; font-weight: bold; margin: 1.67em 0; }
		b, strong, dt, th { font-weight: bold; }
		i, em, cite { font-style: italic; }
		code, pre, kbd { font-family: Courier; }
		pre { white-space: pre; }
		ul { list-style-type: disc; }
		ol { list-style-type: decimal; }
		dd { margin-left: 30pt; }
		a { color: #0000EE; }
	`)
	return stylesheet
}
