package kdag

import (
	"bytes"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestNewGraph(t *testing.T) {
	g := NewGraph()
	assert.NotZero(t, g)
	assert.NotEqual(t, (map[NodeKey]*Node)(nil), g.Nodes)
	assert.Equal(t, 0, len(g.AllEdges()))
}

func TestAddEdge(t *testing.T) {
	t.Run("produce edge links unit to topic", func(t *testing.T) {
		g := NewGraph()
		assert.True(t, g.AddProduce("svc-a", "orders"))

		unit, ok := g.GetNode(NodeTypeDeploymentUnit, "svc-a")
		assert.True(t, ok)
		assert.Equal(t, []NodeID{"orders"}, unit.Children)

		topic, ok := g.GetNode(NodeTypeTopic, "orders")
		assert.True(t, ok)
		assert.Equal(t, []NodeID{"svc-a"}, topic.Parents)
	})

	t.Run("consume edge links topic to unit", func(t *testing.T) {
		g := NewGraph()
		assert.True(t, g.AddConsume("orders", "unit-g1"))

		topic, ok := g.GetNode(NodeTypeTopic, "orders")
		assert.True(t, ok)
		assert.Equal(t, []NodeID{"unit-g1"}, topic.Children)
		assert.True(t, g.HasEdge(Edge{From: "orders", To: "unit-g1", Kind: EdgeConsume}))
		assert.False(t, g.HasEdge(Edge{From: "orders", To: "unit-g1", Kind: EdgeProduce}))
	})

	t.Run("duplicates are ignored per kind", func(t *testing.T) {
		g := NewGraph()
		assert.True(t, g.AddProduce("svc-a", "orders"))
		assert.False(t, g.AddProduce("svc-a", "orders"))
		assert.True(t, g.AddConsume("orders", "svc-a"))
		assert.False(t, g.AddConsume("orders", "svc-a"))

		assert.Equal(t, 1, g.EdgeCount(EdgeProduce))
		assert.Equal(t, 1, g.EdgeCount(EdgeConsume))

		unit, _ := g.GetNode(NodeTypeDeploymentUnit, "svc-a")
		assert.Equal(t, []NodeID{"orders"}, unit.Children)
		assert.Equal(t, []NodeID{"orders"}, unit.Parents)
	})

	t.Run("unit and topic with the same name are distinct nodes", func(t *testing.T) {
		g := NewGraph()
		g.AddProduce("audit", "audit")

		assert.Equal(t, 2, len(g.Nodes))
		assert.Equal(t, []NodeID{"audit"}, g.NodesOfType(NodeTypeTopic))
		assert.Equal(t, []NodeID{"audit"}, g.NodesOfType(NodeTypeDeploymentUnit))
	})
}

func TestEdgesSorted(t *testing.T) {
	g := NewGraph()
	g.AddConsume("orders", "unit-b")
	g.AddProduce("svc-b", "orders")
	g.AddConsume("orders", "unit-a")
	g.AddProduce("svc-a", "payments")
	g.AddProduce("svc-a", "orders")

	assert.Equal(t, []Edge{
		{From: "svc-a", To: "orders", Kind: EdgeProduce},
		{From: "svc-a", To: "payments", Kind: EdgeProduce},
		{From: "svc-b", To: "orders", Kind: EdgeProduce},
		{From: "orders", To: "unit-a", Kind: EdgeConsume},
		{From: "orders", To: "unit-b", Kind: EdgeConsume},
	}, g.AllEdges())
}

func TestWriteDOT(t *testing.T) {
	t.Run("end to end example", func(t *testing.T) {
		g := NewGraph()
		g.AddProduce("svc-a", "orders")
		g.AddConsume("orders", "unit-g1")

		var buf bytes.Buffer
		assert.NoError(t, g.WriteDOT(&buf))
		assert.Equal(t, "digraph D {\n\"svc-a\" -> \"orders\"\n\"orders\" -> \"unit-g1\"\n}\n", buf.String())
		assert.Equal(t, buf.String(), g.DOT())
	})

	t.Run("empty graph", func(t *testing.T) {
		assert.Equal(t, "digraph D {\n}\n", NewGraph().DOT())
	})

	t.Run("quotes are escaped", func(t *testing.T) {
		e := Edge{From: `we"ird`, To: `back\slash`, Kind: EdgeProduce}
		assert.Equal(t, `"we\"ird" -> "back\\slash"`, e.DOT())
	})
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "Produce", EdgeProduce.String())
	assert.Equal(t, "Consume", EdgeConsume.String())
	assert.Equal(t, "Topic", NodeTypeTopic.String())
	assert.Equal(t, "DeploymentUnit(svc-a)", NodeKey{Type: NodeTypeDeploymentUnit, ID: "svc-a"}.String())
}
