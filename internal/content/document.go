package content

import (
	"errors"
)

// ErrNilRoot is returned when a document is built without a root node.
var ErrNilRoot = errors.New("content: nil root node")

// Document owns a content tree and indexes its nodes by NodeID.
type Document struct {
	Root *Node
	// Stylesheets holds raw CSS collected from the source (e.g. <style> blocks).
	Stylesheets []string

	nodes   []*Node
	parents []NodeID
}

// NewDocument numbers the tree rooted at root and returns its Document. A root
// that is not a KindDocument node is wrapped in one.
func NewDocument(root *Node) (*Document, error) {
	if root == nil {
		return nil, ErrNilRoot
	}
	if root.Kind != KindDocument {
		root = Doc(root)
	}
	d := &Document{Root: root}
	d.index(root, NoNode)
	return d, nil
}

// MustDocument is NewDocument for trees built in code.
func MustDocument(root *Node) *Document {
	d, err := NewDocument(root)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Document) index(n *Node, parent NodeID) {
	n.ID = NodeID(len(d.nodes))
	d.nodes = append(d.nodes, n)
	d.parents = append(d.parents, parent)
	for _, c := range n.Children {
		d.index(c, n.ID)
	}
}

// Len returns the number of nodes.
func (d *Document) Len() int { return len(d.nodes) }

// Node returns the node with the given ID, or nil.
func (d *Document) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(d.nodes) {
		return nil
	}
	return d.nodes[id]
}

// Parent returns the parent of id, or nil for the root.
func (d *Document) Parent(id NodeID) *Node {
	if id < 0 || int(id) >= len(d.parents) {
		return nil
	}
	return d.Node(d.parents[id])
}

// Walk visits the tree in document order until fn returns false.
func (d *Document) Walk(fn func(n *Node, depth int) bool) {
	var walk func(n *Node, depth int) bool
	walk = func(n *Node, depth int) bool {
		if !fn(n, depth) {
			return false
		}
		for _, c := range n.Children {
			if !walk(c, depth+1) {
				return false
			}
		}
		return true
	}
	walk(d.Root, 0)
}

// Find returns the first node whose Name equals name.
func (d *Document) Find(name string) *Node {
	for _, n := range d.nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// FindAll returns all nodes of the given kind in document order.
func (d *Document) FindAll(kind Kind) []*Node {
	var out []*Node
	for _, n := range d.nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}
