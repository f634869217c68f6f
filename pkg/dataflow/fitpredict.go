package dataflow

import (
	"log/slog"

	"github.com/meridian-research/seriesflow/pkg/frame"
)

// Outputs maps a node's output slot names to the frames it produced.
type Outputs map[string]*frame.Frame

// Info is a per-method diagnostic record populated by a node after each
// fit or predict invocation. The engine never interprets it.
type Info map[string]any

// FitState is a minimal serializable snapshot of a node's learned
// parameters, sufficient to reconstruct predict behavior without
// replaying fit. Field names are implementation-defined per node kind.
type FitState map[string]any

// FitPredictNode is a node with the dual fit/predict contract.
//
// Fit consumes the declared input frames and returns the declared
// output frames; it may create learned internal state as a side effect.
// Predict has the same signature but must not create state; it consumes
// whatever state Fit (or SetFitState) produced.
type FitPredictNode interface {
	Node
	Fit(inputs map[string]*frame.Frame) (Outputs, error)
	Predict(inputs map[string]*frame.Frame) (Outputs, error)

	// Info returns the diagnostic record for a method, or nil (with a
	// logged warning) if the method has not been invoked yet.
	Info(method Method) Info

	// FitState and SetFitState round-trip the learned-parameter
	// snapshot; after SetFitState the node predicts as if freshly fit.
	FitState() (FitState, error)
	SetFitState(state FitState) error
}

// FitPredictBase carries the diagnostic info store shared by all
// fit/predict nodes and provides no-op fit-state behavior for
// stateless kinds.
type FitPredictBase struct {
	NodeBase
	info map[Method]Info
}

// NewFitPredictBase builds the base with the given slots (nil slices
// default to single df_in/df_out as in NewNodeBase).
func NewFitPredictBase(id string, inputs, outputs []string) FitPredictBase {
	return FitPredictBase{
		NodeBase: NewNodeBase(id, inputs, outputs),
		info:     make(map[Method]Info),
	}
}

// Info returns a copy of the stored record for method. Requesting info
// for a method that has never run is a usage warning, not an error.
func (b *FitPredictBase) Info(method Method) Info {
	stored, ok := b.info[method]
	if !ok {
		slog.Warn("no info found", "node", b.ID(), "method", method)
		return nil
	}
	return copyInfo(stored)
}

// SetInfo stores a defensive copy of values as the record for method,
// so callers that later mutate their own map cannot corrupt stored
// diagnostics. Re-recording fit info flags a re-fit but does not block.
func (b *FitPredictBase) SetInfo(method Method, values Info) {
	if _, refit := b.info[method]; refit && method == MethodFit {
		slog.Warn("node already fit; re-fitting", "node", b.ID())
	}
	b.info[method] = copyInfo(values)
}

// FitState returns an empty snapshot; stateless nodes have nothing to
// save.
func (b *FitPredictBase) FitState() (FitState, error) { return FitState{}, nil }

// SetFitState accepts any snapshot; stateless nodes have nothing to
// restore.
func (b *FitPredictBase) SetFitState(FitState) error { return nil }

func copyInfo(info Info) Info {
	out := make(Info, len(info))
	for k, v := range info {
		out[k] = v
	}
	return out
}
