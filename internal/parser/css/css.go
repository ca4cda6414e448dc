package css

import (
	"errors"
	"io"
	"strings"
)

// Parser represents a CSS parser
type Parser struct{}

// Rule represents a CSS rule
type Rule struct {
	Selectors    []string
	Declarations []*Declaration
}

// PageRule is an @page block, optionally named ("@page wide { ... }").
type PageRule struct {
	Name         string
	Declarations []*Declaration
}

// Declaration represents a CSS declaration (property-value pair)
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules []*Rule
	Pages []*PageRule
}

var errInvalidRule = errors.New("css: invalid rule format")

// NewParser creates a new CSS parser
func NewParser() *Parser {
	return &Parser{}
}

// ParseString parses CSS from a string
func (p *Parser) ParseString(content string) (*Stylesheet, error) {
	return p.Parse(strings.NewReader(content))
}

// Parse parses CSS from an io.Reader
func (p *Parser) Parse(r io.Reader) (*Stylesheet, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return p.parseCSS(string(content)), nil
}

// ParseDeclarations parses the body of a style attribute.
func (p *Parser) ParseDeclarations(s string) []*Declaration {
	return parseDeclarations(removeComments(s))
}

func (p *Parser) parseCSS(content string) *Stylesheet {
	stylesheet := &Stylesheet{}

	content = removeComments(content)
	for _, ruleStr := range splitRules(content) {
		if strings.HasPrefix(ruleStr, "@page") {
			if pr, err := parsePageRule(ruleStr); err == nil {
				stylesheet.Pages = append(stylesheet.Pages, pr)
			}
			continue
		}
		if strings.HasPrefix(ruleStr, "@") {
			// @media and friends are not part of the paged model.
			continue
		}
		rule, err := parseRule(ruleStr)
		if err != nil {
			continue
		}
		stylesheet.Rules = append(stylesheet.Rules, rule)
	}

	return stylesheet
}

func splitBlock(ruleStr string) (string, string, error) {
	parts := strings.SplitN(ruleStr, "{", 2)
	if len(parts) != 2 {
		return "", "", errInvalidRule
	}
	head := strings.TrimSpace(parts[0])
	body := strings.TrimSuffix(strings.TrimSpace(parts[1]), "}")
	return head, body, nil
}

func parseRule(ruleStr string) (*Rule, error) {
	selectorStr, body, err := splitBlock(ruleStr)
	if err != nil {
		return nil, err
	}
	selectors := parseSelectors(selectorStr)
	if len(selectors) == 0 {
		return nil, errors.New("css: no selectors found")
	}
	return &Rule{
		Selectors:    selectors,
		Declarations: parseDeclarations(body),
	}, nil
}

func parsePageRule(ruleStr string) (*PageRule, error) {
	head, body, err := splitBlock(ruleStr)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(strings.TrimPrefix(head, "@page"))
	// Page pseudo-classes (:first, :left) are accepted but ignored.
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	return &PageRule{Name: name, Declarations: parseDeclarations(body)}, nil
}

func parseSelectors(selectorStr string) []string {
	selectors := strings.Split(selectorStr, ",")
	result := make([]string, 0, len(selectors))

	for _, selector := range selectors {
		selector = strings.TrimSpace(selector)
		if selector != "" {
			result = append(result, selector)
		}
	}

	return result
}

func parseDeclarations(declarationsStr string) []*Declaration {
	declarationStrings := strings.Split(declarationsStr, ";")
	result := make([]*Declaration, 0, len(declarationStrings))

	for _, declStr := range declarationStrings {
		declStr = strings.TrimSpace(declStr)
		if declStr == "" {
			continue
		}

		parts := strings.SplitN(declStr, ":", 2)
		if len(parts) != 2 {
			continue
		}

		property := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])

		important := false
		if strings.HasSuffix(value, "!important") {
			important = true
			value = strings.TrimSpace(strings.TrimSuffix(value, "!important"))
		}

		result = append(result, &Declaration{
			Property:  property,
			Value:     value,
			Important: important,
		})
	}

	return result
}

func removeComments(content string) string {
	var result strings.Builder
	i := 0

	for i < len(content) {
		if i+1 < len(content) && content[i] == '/' && content[i+1] == '*' {
			commentEnd := strings.Index(content[i+2:], "*/")
			if commentEnd == -1 {
				break
			}
			i += commentEnd + 4
		} else {
			result.WriteByte(content[i])
			i++
		}
	}

	return result.String()
}

// splitRules splits CSS content into top-level rules. Nested blocks (such as
// the body of @media) stay inside the rule that opened them.
func splitRules(content string) []string {
	var rules []string
	var currentRule strings.Builder
	braceCount := 0

	for i := 0; i < len(content); i++ {
		char := content[i]

		switch char {
		case '{':
			braceCount++
		case '}':
			braceCount--
			if braceCount == 0 {
				currentRule.WriteByte(char)
				rules = append(rules, strings.TrimSpace(currentRule.String()))
				currentRule.Reset()
				continue
			}
		}

		if braceCount > 0 || !isWhitespace(char) || currentRule.Len() > 0 {
			currentRule.WriteByte(char)
		}
	}

	return rules
}

func isWhitespace(char byte) bool {
	return char == ' ' || char == '\t' || char == '\n' || char == '\r'
}
