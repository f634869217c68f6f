package dataflow

import (
	"fmt"

	"github.com/meridian-research/seriesflow/pkg/frame"
)

// YConnector input slot names.
const (
	YInputFirst  = "df_in1"
	YInputSecond = "df_in2"
)

// ConnectorFunc combines two frames into one (join, reindex, custom).
type ConnectorFunc func(first, second *frame.Frame) (*frame.Frame, error)

// YConnector is a stateless two-input node that produces a single
// output frame from a user connector function. Fit and predict apply
// the same function.
type YConnector struct {
	FitPredictBase
	connect ConnectorFunc

	firstColumns  []string
	secondColumns []string
}

// NewYConnector builds the combiner node.
func NewYConnector(id string, connect ConnectorFunc) (*YConnector, error) {
	if connect == nil {
		return nil, fmt.Errorf("node %q: connector func must not be nil", id)
	}
	return &YConnector{
		FitPredictBase: NewFitPredictBase(id, []string{YInputFirst, YInputSecond}, nil),
		connect:        connect,
	}, nil
}

func (y *YConnector) Fit(inputs map[string]*frame.Frame) (Outputs, error) {
	return y.apply(MethodFit, inputs)
}

func (y *YConnector) Predict(inputs map[string]*frame.Frame) (Outputs, error) {
	return y.apply(MethodPredict, inputs)
}

// FirstColumns returns the column names of the first input as seen by
// the last invocation.
func (y *YConnector) FirstColumns() ([]string, error) {
	return y.seenColumns(y.firstColumns)
}

// SecondColumns returns the column names of the second input as seen by
// the last invocation.
func (y *YConnector) SecondColumns() ([]string, error) {
	return y.seenColumns(y.secondColumns)
}

func (y *YConnector) seenColumns(cols []string) ([]string, error) {
	if cols == nil {
		return nil, fmt.Errorf("node %q: no column names; invoked prior to graph execution", y.ID())
	}
	return cols, nil
}

func (y *YConnector) apply(method Method, inputs map[string]*frame.Frame) (Outputs, error) {
	first, ok := inputs[YInputFirst]
	if !ok || first == nil {
		return nil, fmt.Errorf("node %q: missing input %q", y.ID(), YInputFirst)
	}
	second, ok := inputs[YInputSecond]
	if !ok || second == nil {
		return nil, fmt.Errorf("node %q: missing input %q", y.ID(), YInputSecond)
	}
	y.firstColumns = first.Columns()
	y.secondColumns = second.Columns()
	out, err := y.connect(first, second)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", y.ID(), err)
	}
	y.SetInfo(method, Info{"df_merged_info": out.Summary()})
	return Outputs{DefaultOutput: out}, nil
}
