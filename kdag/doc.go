// Package kdag models the topic dependency graph of a Kafka deployment.
//
// # Overview
//
// The graph is bipartite. Deployment units produce to topics and topics are
// consumed by deployment units:
//
//	"svc-a" -> "orders" -> "unit-billing"
//
// Two edge kinds exist:
//
//   - **EdgeProduce**: deployment unit to topic
//   - **EdgeConsume**: topic to deployment unit
//
// Edges are deduplicated per kind. A deployment unit and a topic may share a
// name; they are still distinct nodes of the graph, but they collapse into a
// single vertex once rendered as DOT.
//
// # Basic Usage
//
//	g := kdag.NewGraph()
//	g.AddProduce("svc-a", "orders")
//	g.AddConsume("orders", "unit-billing")
//
//	if err := g.WriteDOT(os.Stdout); err != nil {
//	    // handle
//	}
//
// # Output
//
// WriteDOT renders a Graphviz digraph named D. Producer edges are written
// first, then consumer edges, each sorted by source and target so that
// output is stable across runs.
//
// # Thread Safety
//
// Graph is NOT safe for concurrent use.
package kdag
