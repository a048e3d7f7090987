package kdag

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	dotHeader = "digraph D {"
	dotFooter = "}"
)

// WriteDOT renders g as a Graphviz digraph, one edge per line.
func (g *Graph) WriteDOT(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintln(bw, dotHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range g.AllEdges() {
		if _, err := fmt.Fprintln(bw, e.DOT()); err != nil {
			return fmt.Errorf("write edge: %w", err)
		}
	}
	if _, err := fmt.Fprintln(bw, dotFooter); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush dot: %w", err)
	}
	return nil
}

// DOT returns the rendering produced by WriteDOT.
func (g *Graph) DOT() string {
	var sb strings.Builder
	_ = g.WriteDOT(&sb) // strings.Builder never fails
	return sb.String()
}

// DOT renders e as `"from" -> "to"`.
func (e Edge) DOT() string {
	return quote(e.From) + " -> " + quote(e.To)
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(id NodeID) string {
	return `"` + dotEscaper.Replace(string(id)) + `"`
}
