package dataflow

import (
	"fmt"

	"github.com/meridian-research/seriesflow/pkg/frame"
)

// Method names one of the two node lifecycle operations.
type Method string

const (
	MethodFit     Method = "fit"
	MethodPredict Method = "predict"
)

// ParseMethod converts a string to a Method.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodFit, MethodPredict:
		return Method(s), nil
	default:
		return "", fmt.Errorf("unknown method %q: want %q or %q", s, MethodFit, MethodPredict)
	}
}

// Call dispatches method on node. This is the closed-set dispatcher the
// engine uses instead of reflection.
func Call(node FitPredictNode, method Method, inputs map[string]*frame.Frame) (Outputs, error) {
	switch method {
	case MethodFit:
		return node.Fit(inputs)
	case MethodPredict:
		return node.Predict(inputs)
	default:
		return nil, fmt.Errorf("node %q: unknown method %q", node.ID(), method)
	}
}
