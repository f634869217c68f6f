package dataflow

import (
	"fmt"
	"math"

	"github.com/meridian-research/seriesflow/pkg/frame"
)

// Bars per year used to annualize per-bar volatility, assuming daily
// bars.
const annualizationFactor = 252

// VolatilityNormalizer rescales one column to a target annualized
// volatility. The scale factor is learned during fit and reused
// verbatim in predict, which makes this the reference stateful node for
// the fit-state extraction contract.
type VolatilityNormalizer struct {
	FitPredictBase
	col       string
	targetVol float64
	colMode   ColMode

	scaleFactor *float64
}

// NewVolatilityNormalizer builds the node. mode must be merge_all or
// replace_all (empty defaults to merge_all).
func NewVolatilityNormalizer(id, col string, targetVol float64, mode ColMode) (*VolatilityNormalizer, error) {
	parsed, err := ParseColMode(string(mode))
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", id, err)
	}
	if parsed == ColModeReplaceSelected {
		return nil, fmt.Errorf("node %q: invalid col_mode %q: want merge_all or replace_all", id, parsed)
	}
	if targetVol <= 0 {
		return nil, fmt.Errorf("node %q: target volatility must be positive, got %v", id, targetVol)
	}
	return &VolatilityNormalizer{
		FitPredictBase: NewFitPredictBase(id, nil, nil),
		col:            col,
		targetVol:      targetVol,
		colMode:        parsed,
	}, nil
}

func (v *VolatilityNormalizer) Fit(inputs map[string]*frame.Frame) (Outputs, error) {
	in, err := v.input(inputs)
	if err != nil {
		return nil, err
	}
	vals, err := in.Column(v.col)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", v.ID(), err)
	}
	vol := annualizedVolatility(vals)
	if vol == 0 || math.IsNaN(vol) {
		return nil, fmt.Errorf("node %q: column %q has no volatility to normalize", v.ID(), v.col)
	}
	scale := v.targetVol / vol
	v.scaleFactor = &scale
	out, err := v.rescale(in)
	if err != nil {
		return nil, err
	}
	v.SetInfo(MethodFit, Info{"scale_factor": scale})
	return Outputs{DefaultOutput: out}, nil
}

func (v *VolatilityNormalizer) Predict(inputs map[string]*frame.Frame) (Outputs, error) {
	in, err := v.input(inputs)
	if err != nil {
		return nil, err
	}
	if v.scaleFactor == nil {
		return nil, fmt.Errorf("node %q: predict before fit and no fit state set", v.ID())
	}
	out, err := v.rescale(in)
	if err != nil {
		return nil, err
	}
	v.SetInfo(MethodPredict, Info{"scale_factor": *v.scaleFactor})
	return Outputs{DefaultOutput: out}, nil
}

// FitState snapshots the learned scale factor.
func (v *VolatilityNormalizer) FitState() (FitState, error) {
	if v.scaleFactor == nil {
		return nil, fmt.Errorf("node %q: no fit state: fit has not run", v.ID())
	}
	return FitState{"scale_factor": *v.scaleFactor}, nil
}

// SetFitState restores a snapshot taken by FitState; afterwards the
// node predicts as if freshly fit.
func (v *VolatilityNormalizer) SetFitState(state FitState) error {
	raw, ok := state["scale_factor"]
	if !ok {
		return fmt.Errorf("node %q: fit state missing scale_factor", v.ID())
	}
	scale, ok := raw.(float64)
	if !ok {
		return fmt.Errorf("node %q: scale_factor has type %T, want float64", v.ID(), raw)
	}
	v.scaleFactor = &scale
	return nil
}

func (v *VolatilityNormalizer) input(inputs map[string]*frame.Frame) (*frame.Frame, error) {
	in, ok := inputs[DefaultInput]
	if !ok || in == nil {
		return nil, fmt.Errorf("node %q: missing input %q", v.ID(), DefaultInput)
	}
	return in, nil
}

func (v *VolatilityNormalizer) rescale(in *frame.Frame) (*frame.Frame, error) {
	vals, err := in.Column(v.col)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", v.ID(), err)
	}
	scaled := make([]float64, len(vals))
	for i, x := range vals {
		scaled[i] = *v.scaleFactor * x
	}
	rescaled, err := frame.New(in.Index(), frame.Column{Name: v.col, Values: scaled})
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", v.ID(), err)
	}
	out, err := ApplyColMode(in, rescaled, []string{v.col},
		func(name string) string { return "rescaled_" + name }, v.colMode)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", v.ID(), err)
	}
	return out, nil
}

// annualizedVolatility is the NaN-skipping sample standard deviation
// scaled by sqrt(annualizationFactor).
func annualizedVolatility(vals []float64) float64 {
	var kept []float64
	for _, v := range vals {
		if !math.IsNaN(v) {
			kept = append(kept, v)
		}
	}
	if len(kept) < 2 {
		return math.NaN()
	}
	mean := 0.0
	for _, v := range kept {
		mean += v
	}
	mean /= float64(len(kept))
	ss := 0.0
	for _, v := range kept {
		d := v - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(kept)-1))
	return std * math.Sqrt(annualizationFactor)
}
