package kdag

import (
	"fmt"
	"sort"
)

// NodeID identifies a node within its NodeType.
type NodeID string

// NodeType represents the kind of node in the graph
type NodeType int

const (
	NodeTypeDeploymentUnit NodeType = iota
	NodeTypeTopic
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeDeploymentUnit:
		return "DeploymentUnit"
	case NodeTypeTopic:
		return "Topic"
	default:
		return "Unknown"
	}
}

// EdgeKind tells producer edges from consumer edges.
type EdgeKind int

const (
	// EdgeProduce points from a deployment unit to a topic it publishes to.
	EdgeProduce EdgeKind = iota
	// EdgeConsume points from a topic to a deployment unit consuming it.
	EdgeConsume
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeProduce:
		return "Produce"
	case EdgeConsume:
		return "Consume"
	default:
		return "Unknown"
	}
}

// endpoints returns the node types an edge of kind k connects.
func (k EdgeKind) endpoints() (from, to NodeType) {
	if k == EdgeProduce {
		return NodeTypeDeploymentUnit, NodeTypeTopic
	}
	return NodeTypeTopic, NodeTypeDeploymentUnit
}

// NodeKey uniquely identifies a node.
type NodeKey struct {
	Type NodeType
	ID   NodeID
}

func (k NodeKey) String() string {
	return fmt.Sprintf("%s(%s)", k.Type, k.ID)
}

// Node is a deployment unit or a topic.
type Node struct {
	ID   NodeID
	Type NodeType

	// Parent edges (incoming)
	Parents []NodeID

	// Child edges (outgoing)
	Children []NodeID
}

// Edge is a directed edge. From and To are interpreted according to Kind.
type Edge struct {
	From NodeID
	To   NodeID
	Kind EdgeKind
}

// Graph is the topic dependency graph.
type Graph struct {
	Nodes map[NodeKey]*Node

	// Deterministic node ordering (insertion order)
	NodeOrder []NodeKey

	edges map[Edge]struct{}
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes:     make(map[NodeKey]*Node),
		NodeOrder: make([]NodeKey, 0),
		edges:     make(map[Edge]struct{}),
	}
}

// AddProduce adds the edge unit -> topic. It reports whether the edge was
// new.
func (g *Graph) AddProduce(unit, topic string) bool {
	return g.AddEdge(Edge{From: NodeID(unit), To: NodeID(topic), Kind: EdgeProduce})
}

// AddConsume adds the edge topic -> unit. It reports whether the edge was
// new.
func (g *Graph) AddConsume(topic, unit string) bool {
	return g.AddEdge(Edge{From: NodeID(topic), To: NodeID(unit), Kind: EdgeConsume})
}

// AddEdge adds e and both of its endpoints. Adding an edge twice is a no-op
// that returns false.
func (g *Graph) AddEdge(e Edge) bool {
	if _, exists := g.edges[e]; exists {
		return false
	}
	g.edges[e] = struct{}{}

	fromType, toType := e.Kind.endpoints()
	parent := g.node(fromType, e.From)
	child := g.node(toType, e.To)
	parent.Children = append(parent.Children, e.To)
	child.Parents = append(child.Parents, e.From)
	return true
}

func (g *Graph) node(t NodeType, id NodeID) *Node {
	key := NodeKey{Type: t, ID: id}
	if n, ok := g.Nodes[key]; ok {
		return n
	}
	n := &Node{ID: id, Type: t}
	g.Nodes[key] = n
	g.NodeOrder = append(g.NodeOrder, key)
	return n
}

// GetNode returns the node of type t named id.
func (g *Graph) GetNode(t NodeType, id NodeID) (*Node, bool) {
	n, ok := g.Nodes[NodeKey{Type: t, ID: id}]
	return n, ok
}

// HasEdge reports whether e is part of the graph.
func (g *Graph) HasEdge(e Edge) bool {
	_, ok := g.edges[e]
	return ok
}

// Edges returns the edges of kind k sorted by source, then target.
func (g *Graph) Edges(k EdgeKind) []Edge {
	out := make([]Edge, 0, len(g.edges))
	for e := range g.edges {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// AllEdges returns producer edges followed by consumer edges.
func (g *Graph) AllEdges() []Edge {
	return append(g.Edges(EdgeProduce), g.Edges(EdgeConsume)...)
}

// EdgeCount returns the number of edges of kind k.
func (g *Graph) EdgeCount(k EdgeKind) int {
	n := 0
	for e := range g.edges {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// NodesOfType returns the IDs of all nodes of type t in ascending order.
func (g *Graph) NodesOfType(t NodeType) []NodeID {
	var out []NodeID
	for key := range g.Nodes {
		if key.Type == t {
			out = append(out, key.ID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
