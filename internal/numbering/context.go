package numbering

import (
	"github.com/gompdf/pageflow/internal/content"
	"github.com/gompdf/pageflow/internal/unit"
)

// Marker box metrics.
const (
	DefaultInset = unit.Unit(30)
	Gutter       = unit.Unit(10)
	LabelPadding = unit.Unit(2)
)

// Settings are the numbering properties of one list.
type Settings struct {
	Style       Style
	Prefix      string
	Postfix     string
	Group       string
	Concatenate bool
	Start       int
	HasStart    bool
}

// Label is the marker assigned to one list item.
type Label struct {
	Number int
	Style  Style
	// Text is the rendered marker.
	Text string
	// Core is the part nested concatenated lists build on (no postfix).
	Core string
}

type counter struct {
	settings Settings
	parent   content.NodeID
	value    *int
}

// Context holds the counters of one layout pass. Items are numbered once;
// asking again for the same item (after a page or column break) returns the
// label it already has.
type Context struct {
	lists  map[content.NodeID]*counter
	groups map[string]*int
	items  map[content.NodeID]Label
}

// NewContext returns an empty numbering context.
func NewContext() *Context {
	return &Context{
		lists:  make(map[content.NodeID]*counter),
		groups: make(map[string]*int),
		items:  make(map[content.NodeID]Label),
	}
}

// Begin registers a list. parentItem is the list item the list is nested in,
// or content.NoNode. Calling Begin again for a list that is being resumed is
// a no-op.
func (c *Context) Begin(list content.NodeID, s Settings, parentItem content.NodeID) {
	if _, ok := c.lists[list]; ok {
		return
	}
	var value *int
	if s.Group != "" {
		value = c.groups[s.Group]
		if value == nil {
			value = new(int)
			c.groups[s.Group] = value
		}
	} else {
		value = new(int)
	}
	if s.HasStart {
		*value = s.Start - 1
	}
	c.lists[list] = &counter{settings: s, parent: parentItem, value: value}
}

// Next numbers item as the next entry of list. Lists that were never begun
// are started with default settings.
func (c *Context) Next(list, item content.NodeID) Label {
	if l, ok := c.items[item]; ok {
		return l
	}
	cnt, ok := c.lists[list]
	if !ok {
		c.Begin(list, Settings{}, content.NoNode)
		cnt = c.lists[list]
	}
	*cnt.value++
	s := cnt.settings
	formatted := Format(*cnt.value, s.Style)

	l := Label{Number: *cnt.value, Style: s.Style}
	switch {
	case s.Style == None:
	case s.Concatenate && cnt.parent != content.NoNode:
		parent := c.items[cnt.parent]
		l.Core = parent.Core + s.Prefix + formatted
		l.Text = l.Core + s.Postfix
	default:
		l.Core = formatted
		l.Text = s.Prefix + formatted + s.Postfix
	}
	c.items[item] = l
	return l
}

// Label returns the label previously assigned to item.
func (c *Context) Label(item content.NodeID) (Label, bool) {
	l, ok := c.items[item]
	return l, ok
}

// Group returns the current value of a numbering group.
func (c *Context) Group(name string) int {
	if v := c.groups[name]; v != nil {
		return *v
	}
	return 0
}
