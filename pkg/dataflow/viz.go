package dataflow

import (
	"fmt"
	"strconv"
	"strings"

	gographviz "github.com/awalterschulze/gographviz"
)

// WriteDOT renders the graph structure as a Graphviz DOT digraph.
// Nodes are labeled with their id and declared slots; edges carry the
// output-to-input slot binding as their label.
func WriteDOT(d *DAG) (string, error) {
	g := gographviz.NewGraph()
	name := d.Name()
	if name == "" {
		name = "dataflow"
	}
	if err := g.SetName(strconv.Quote(name)); err != nil {
		return "", fmt.Errorf("dot render: %w", err)
	}
	if err := g.SetDir(true); err != nil {
		return "", fmt.Errorf("dot render: %w", err)
	}
	for _, id := range d.NodeIDs() {
		node, err := d.Get(id)
		if err != nil {
			return "", err
		}
		label := id
		if ins := node.InputNames(); len(ins) > 0 {
			label += `\nin: ` + strings.Join(ins, ",")
		}
		label += `\nout: ` + strings.Join(node.OutputNames(), ",")
		attrs := map[string]string{
			"shape": "box",
			"label": `"` + label + `"`,
		}
		if err := g.AddNode(strconv.Quote(name), strconv.Quote(id), attrs); err != nil {
			return "", fmt.Errorf("dot render: node %q: %w", id, err)
		}
	}
	for _, e := range d.Edges() {
		attrs := map[string]string{
			"label": `"` + e.OutputName + " -> " + e.InputName + `"`,
		}
		if err := g.AddEdge(strconv.Quote(e.ProducerID), strconv.Quote(e.ConsumerID), true, attrs); err != nil {
			return "", fmt.Errorf("dot render: edge %q->%q: %w", e.ProducerID, e.ConsumerID, err)
		}
	}
	return g.String(), nil
}
