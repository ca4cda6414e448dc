package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDocumentNumbersInDocumentOrder(t *testing.T) {
	root := Doc(
		Page(
			P(Text("a"), Span(Text("b"))),
			OL(LI(Text("c"))),
		),
	)
	d, err := NewDocument(root)
	require.NoError(t, err)

	var kinds []Kind
	d.Walk(func(n *Node, _ int) bool {
		kinds = append(kinds, n.Kind)
		return true
	})
	assert.Equal(t, []Kind{KindDocument, KindPage, KindParagraph, KindText, KindSpan, KindText, KindOrderedList, KindListItem, KindText}, kinds)
	for i := 0; i < d.Len(); i++ {
		assert.Equal(t, NodeID(i), d.Node(NodeID(i)).ID)
	}
	assert.Nil(t, d.Parent(root.ID))
	assert.Equal(t, KindSpan, d.Parent(5).Kind)
	assert.Nil(t, d.Node(100))
}

func TestNewDocumentWrapsNonDocumentRoot(t *testing.T) {
	d, err := NewDocument(Div(Text("x")))
	require.NoError(t, err)
	assert.Equal(t, KindDocument, d.Root.Kind)
	assert.Equal(t, KindDiv, d.Root.Children[0].Kind)
}

func TestNewDocumentNilRoot(t *testing.T) {
	_, err := NewDocument(nil)
	assert.ErrorIs(t, err, ErrNilRoot)
}

func TestBuilderHelpers(t *testing.T) {
	n := Div().Styled("width: 10pt").Styled("height: 5pt").Classed("a b").Named("box").WithAttr("data-x", "1")
	assert.Equal(t, "width: 10pt;height: 5pt", n.StyleText)
	assert.True(t, n.HasClass("b"))
	assert.False(t, n.HasClass("c"))
	v, ok := n.Attr("data-x")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	d := MustDocument(Doc(n, Image("logo.png")))
	assert.Same(t, n, d.Find("box"))
	assert.Len(t, d.FindAll(KindImage), 1)
	src, _ := d.FindAll(KindImage)[0].Attr("src")
	assert.Equal(t, "logo.png", src)
}

func TestKindPredicates(t *testing.T) {
	assert.True(t, KindOrderedList.IsList())
	assert.False(t, KindListItem.IsList())
	assert.True(t, KindPage.IsSection())
	assert.True(t, KindColumnBreak.IsBreak())
	assert.Equal(t, "ListOrdered", KindOrderedList.String())
}
