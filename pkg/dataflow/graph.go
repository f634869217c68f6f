package dataflow

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/meridian-research/seriesflow/pkg/frame"
)

// Edge binds one node's output slot to another node's input slot.
type Edge struct {
	ProducerID string
	OutputName string
	ConsumerID string
	InputName  string
}

// LintError describes a structural problem in a graph.
type LintError struct {
	NodeID  string
	Message string
}

func (e LintError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("node %q: %s", e.NodeID, e.Message)
	}
	return e.Message
}

// DAG owns a set of fit/predict nodes and the edges between their
// slots, and executes them in dependency order. It is not safe for
// concurrent use; callers must serialize access.
type DAG struct {
	name  string
	nodes map[string]FitPredictNode
	order []string // insertion order, the topological tie-break
	edges []Edge
}

// NewDAG creates an empty graph.
func NewDAG(name string) *DAG {
	return &DAG{name: name, nodes: make(map[string]FitPredictNode)}
}

// Name returns the graph name.
func (d *DAG) Name() string { return d.name }

// NodeIDs returns all node ids in insertion order.
func (d *DAG) NodeIDs() []string { return append([]string(nil), d.order...) }

// Edges returns a copy of the edge list.
func (d *DAG) Edges() []Edge { return append([]Edge(nil), d.edges...) }

// Add registers a node. Node ids must be unique within the graph.
func (d *DAG) Add(node FitPredictNode) error {
	if node == nil {
		return fmt.Errorf("node must not be nil")
	}
	if node.ID() == "" {
		return fmt.Errorf("node id must not be empty")
	}
	if _, dup := d.nodes[node.ID()]; dup {
		return fmt.Errorf("node %q already added", node.ID())
	}
	d.nodes[node.ID()] = node
	d.order = append(d.order, node.ID())
	return nil
}

// Get returns a registered node by id.
func (d *DAG) Get(id string) (FitPredictNode, error) {
	node, ok := d.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %q not found in graph", id)
	}
	return node, nil
}

// Connect binds (producerID, outputName) to (consumerID, inputName).
// Both slots must be declared by their nodes, and each input slot may
// be connected at most once; a second connection is an error, never a
// silent rebind.
func (d *DAG) Connect(producerID, outputName, consumerID, inputName string) error {
	producer, err := d.Get(producerID)
	if err != nil {
		return err
	}
	consumer, err := d.Get(consumerID)
	if err != nil {
		return err
	}
	if !contains(producer.OutputNames(), outputName) {
		return fmt.Errorf("node %q has no output %q (have [%s])",
			producerID, outputName, strings.Join(producer.OutputNames(), " "))
	}
	if !contains(consumer.InputNames(), inputName) {
		return fmt.Errorf("node %q has no input %q (have [%s])",
			consumerID, inputName, strings.Join(consumer.InputNames(), " "))
	}
	for _, e := range d.edges {
		if e.ConsumerID == consumerID && e.InputName == inputName {
			return fmt.Errorf("node %q: input %q already connected to %q.%s",
				consumerID, inputName, e.ProducerID, e.OutputName)
		}
	}
	d.edges = append(d.edges, Edge{
		ProducerID: producerID,
		OutputName: outputName,
		ConsumerID: consumerID,
		InputName:  inputName,
	})
	return nil
}

// ConnectSingle binds the producer's sole output to the consumer's sole
// input. Either node having other than one such slot is an error.
func (d *DAG) ConnectSingle(producerID, consumerID string) error {
	producer, err := d.Get(producerID)
	if err != nil {
		return err
	}
	consumer, err := d.Get(consumerID)
	if err != nil {
		return err
	}
	outs, ins := producer.OutputNames(), consumer.InputNames()
	if len(outs) != 1 {
		return fmt.Errorf("node %q has %d outputs; name the output slot explicitly", producerID, len(outs))
	}
	if len(ins) != 1 {
		return fmt.Errorf("node %q has %d inputs; name the input slot explicitly", consumerID, len(ins))
	}
	return d.Connect(producerID, outs[0], consumerID, ins[0])
}

// Validate checks the whole graph for structural correctness and
// returns all discovered problems: cycles and unconnected input slots.
func (d *DAG) Validate() []LintError {
	var errs []LintError
	if _, err := d.topologicalOrder(nil); err != nil {
		errs = append(errs, LintError{Message: err.Error()})
	}
	for _, id := range d.order {
		node := d.nodes[id]
		for _, input := range node.InputNames() {
			if !d.inputConnected(id, input) {
				errs = append(errs, LintError{NodeID: id, Message: fmt.Sprintf("input %q is not connected", input)})
			}
		}
	}
	return errs
}

// ValidateErr is Validate collapsed into a single error, nil when the
// graph is well formed.
func (d *DAG) ValidateErr() error {
	errs := d.Validate()
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("graph validation failed:\n  %s", strings.Join(msgs, "\n  "))
}

// RunLeqNode executes the dependency closure of target (all ancestors,
// inclusive) in topological order, invoking method on each node and
// threading named outputs to named inputs. It returns the target's own
// output mapping. Any structural violation aborts the whole call;
// partial outputs are discarded.
func (d *DAG) RunLeqNode(targetID string, method Method) (Outputs, error) {
	if _, err := d.Get(targetID); err != nil {
		return nil, err
	}
	// Cycle check happens before any node executes.
	if _, err := d.topologicalOrder(nil); err != nil {
		return nil, err
	}
	closure := d.ancestorClosure(targetID)
	order, err := d.topologicalOrder(closure)
	if err != nil {
		return nil, err
	}

	produced := make(map[string]Outputs, len(order))
	for _, id := range order {
		node := d.nodes[id]
		inputs, err := d.gatherInputs(id, produced)
		if err != nil {
			return nil, err
		}
		slog.Info("executing node", "graph", d.name, "node", id, "method", method)
		outputs, err := Call(node, method, inputs)
		if err != nil {
			return nil, fmt.Errorf("node %q: %s: %w", id, method, err)
		}
		for _, name := range node.OutputNames() {
			if _, ok := outputs[name]; !ok {
				return nil, fmt.Errorf("node %q: %s returned no output %q", id, method, name)
			}
		}
		produced[id] = outputs
	}
	return produced[targetID], nil
}

// Run executes method over the whole graph and returns the unique
// sink's outputs. Graphs with zero or multiple sinks require
// RunLeqNode.
func (d *DAG) Run(method Method) (Outputs, error) {
	sink, err := d.UniqueSink()
	if err != nil {
		return nil, err
	}
	return d.RunLeqNode(sink, method)
}

// UniqueSink returns the id of the single node with no outgoing edges.
func (d *DAG) UniqueSink() (string, error) {
	var sinks []string
	for _, id := range d.order {
		hasOut := false
		for _, e := range d.edges {
			if e.ProducerID == id {
				hasOut = true
				break
			}
		}
		if !hasOut {
			sinks = append(sinks, id)
		}
	}
	if len(sinks) != 1 {
		return "", fmt.Errorf("graph has %d sink nodes [%s]; want exactly 1", len(sinks), strings.Join(sinks, " "))
	}
	return sinks[0], nil
}

// gatherInputs assembles the input map for node id from previously
// produced outputs, keyed by the edges' recorded slot names.
func (d *DAG) gatherInputs(id string, produced map[string]Outputs) (map[string]*frame.Frame, error) {
	node := d.nodes[id]
	inputs := make(map[string]*frame.Frame, len(node.InputNames()))
	for _, input := range node.InputNames() {
		edge, ok := d.inboundEdge(id, input)
		if !ok {
			return nil, fmt.Errorf("node %q: input %q is not connected", id, input)
		}
		outs, ok := produced[edge.ProducerID]
		if !ok {
			return nil, fmt.Errorf("node %q: producer %q has not executed", id, edge.ProducerID)
		}
		df, ok := outs[edge.OutputName]
		if !ok {
			return nil, fmt.Errorf("node %q: producer %q yielded no output %q", id, edge.ProducerID, edge.OutputName)
		}
		inputs[input] = df
	}
	return inputs, nil
}

func (d *DAG) inboundEdge(consumerID, inputName string) (Edge, bool) {
	for _, e := range d.edges {
		if e.ConsumerID == consumerID && e.InputName == inputName {
			return e, true
		}
	}
	return Edge{}, false
}

func (d *DAG) inputConnected(consumerID, inputName string) bool {
	_, ok := d.inboundEdge(consumerID, inputName)
	return ok
}

// ancestorClosure returns target plus all its ancestors.
func (d *DAG) ancestorClosure(targetID string) map[string]bool {
	closure := map[string]bool{targetID: true}
	queue := []string{targetID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range d.edges {
			if e.ConsumerID == cur && !closure[e.ProducerID] {
				closure[e.ProducerID] = true
				queue = append(queue, e.ProducerID)
			}
		}
	}
	return closure
}

// topologicalOrder returns the node ids restricted to the given set
// (nil means all nodes) in producer-before-consumer order. The order is
// deterministic for a fixed graph: ties break by insertion order. A
// cycle is fatal since graph execution requires a DAG.
func (d *DAG) topologicalOrder(within map[string]bool) ([]string, error) {
	include := func(id string) bool { return within == nil || within[id] }

	indegree := make(map[string]int)
	for _, id := range d.order {
		if include(id) {
			indegree[id] = 0
		}
	}
	for _, e := range d.edges {
		if include(e.ProducerID) && include(e.ConsumerID) {
			indegree[e.ConsumerID]++
		}
	}

	var order []string
	visited := make(map[string]bool, len(indegree))
	for len(order) < len(indegree) {
		progressed := false
		for _, id := range d.order {
			if !include(id) || visited[id] || indegree[id] != 0 {
				continue
			}
			visited[id] = true
			order = append(order, id)
			for _, e := range d.edges {
				if e.ProducerID == id && include(e.ConsumerID) {
					indegree[e.ConsumerID]--
				}
			}
			progressed = true
		}
		if !progressed {
			return nil, fmt.Errorf("graph execution requires a DAG: cycle detected")
		}
	}
	return order, nil
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
