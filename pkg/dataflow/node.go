// Package dataflow implements a dataflow graph of fit/predict nodes
// over time-indexed frames: node and slot identity, graph composition
// and validation, causal interval sampling for sources, column-merge
// policies, and sequential topological execution.
package dataflow

import (
	"fmt"
	"slices"
)

// Default slot names, matching the single-input single-output shape of
// most nodes.
const (
	DefaultInput  = "df_in"
	DefaultOutput = "df_out"
)

// Node is the identity layer of a graph vertex: a unique id plus
// declared input and output slot names. Arity is fixed at construction.
type Node interface {
	ID() string
	InputNames() []string
	OutputNames() []string
}

// NodeBase provides Node bookkeeping for embedding in concrete nodes.
type NodeBase struct {
	id      string
	inputs  []string
	outputs []string
}

// NewNodeBase constructs the identity record. Nil inputs/outputs
// default to the single df_in/df_out slots; pass empty non-nil slices
// for true zero arity.
func NewNodeBase(id string, inputs, outputs []string) NodeBase {
	if inputs == nil {
		inputs = []string{DefaultInput}
	}
	if outputs == nil {
		outputs = []string{DefaultOutput}
	}
	return NodeBase{id: id, inputs: slices.Clone(inputs), outputs: slices.Clone(outputs)}
}

func (b *NodeBase) ID() string { return b.id }

func (b *NodeBase) InputNames() []string { return slices.Clone(b.inputs) }

func (b *NodeBase) OutputNames() []string { return slices.Clone(b.outputs) }

// SingleOutputName returns the sole output slot name. It panics if the
// node does not have exactly one output; that is a construction bug in
// the calling node type, not a runtime condition.
func (b *NodeBase) SingleOutputName() string {
	if len(b.outputs) != 1 {
		panic(fmt.Sprintf("node %q has %d outputs, want exactly 1", b.id, len(b.outputs)))
	}
	return b.outputs[0]
}
