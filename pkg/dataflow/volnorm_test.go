package dataflow_test

import (
	"strings"
	"testing"

	"github.com/meridian-research/seriesflow/pkg/dataflow"
	"github.com/meridian-research/seriesflow/pkg/frame"
)

func volFrame(n int) *frame.Frame {
	vals := make([]float64, n)
	for i := range vals {
		// Alternating moves so the sample has nonzero volatility.
		if i%2 == 0 {
			vals[i] = 1
		} else {
			vals[i] = -1
		}
	}
	return frame.MustNew(dates(n), frame.Column{Name: "close", Values: vals})
}

func TestVolatilityNormalizer_FitThenPredict(t *testing.T) {
	node, err := dataflow.NewVolatilityNormalizer("norm", "close", 0.2, dataflow.ColModeMergeAll)
	if err != nil {
		t.Fatalf("NewVolatilityNormalizer: %v", err)
	}
	df := volFrame(10)
	outputs, err := node.Fit(inputMap(df))
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	out := outputs[dataflow.DefaultOutput]
	if !out.HasColumn("close") || !out.HasColumn("rescaled_close") {
		t.Fatalf("columns = %v, want close and rescaled_close", out.Columns())
	}
	if _, err := node.Predict(inputMap(df)); err != nil {
		t.Fatalf("Predict: %v", err)
	}
}

func TestVolatilityNormalizer_PredictBeforeFit(t *testing.T) {
	node, err := dataflow.NewVolatilityNormalizer("norm", "close", 0.2, "")
	if err != nil {
		t.Fatalf("NewVolatilityNormalizer: %v", err)
	}
	_, err = node.Predict(inputMap(volFrame(10)))
	if err == nil {
		t.Fatal("expected error for predict before fit")
	}
	if !strings.Contains(err.Error(), "no fit state") {
		t.Errorf("error = %q, want mention of missing fit state", err)
	}
}

func TestVolatilityNormalizer_FitStateRoundTrip(t *testing.T) {
	// Extract the fit state from one node, restore it into a fresh one,
	// and predict: the output must match predicting with the fitted node.
	df := volFrame(12)
	fitted, err := dataflow.NewVolatilityNormalizer("norm", "close", 0.2, dataflow.ColModeMergeAll)
	if err != nil {
		t.Fatalf("NewVolatilityNormalizer: %v", err)
	}
	if _, err := fitted.Fit(inputMap(df)); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	want, err := fitted.Predict(inputMap(df))
	if err != nil {
		t.Fatalf("Predict (fitted): %v", err)
	}

	state, err := fitted.FitState()
	if err != nil {
		t.Fatalf("FitState: %v", err)
	}
	restored, err := dataflow.NewVolatilityNormalizer("norm", "close", 0.2, dataflow.ColModeMergeAll)
	if err != nil {
		t.Fatalf("NewVolatilityNormalizer: %v", err)
	}
	if err := restored.SetFitState(state); err != nil {
		t.Fatalf("SetFitState: %v", err)
	}
	got, err := restored.Predict(inputMap(df))
	if err != nil {
		t.Fatalf("Predict (restored): %v", err)
	}
	if !got[dataflow.DefaultOutput].Equal(want[dataflow.DefaultOutput]) {
		t.Error("restored node predicts differently from the fitted node")
	}
}

func TestVolatilityNormalizer_RefitUpdatesState(t *testing.T) {
	// Fitting an already-fit node warns but proceeds: the second fit
	// relearns the scale factor and refreshes the fit info.
	node, err := dataflow.NewVolatilityNormalizer("norm", "close", 0.2, dataflow.ColModeMergeAll)
	if err != nil {
		t.Fatalf("NewVolatilityNormalizer: %v", err)
	}
	if _, err := node.Fit(inputMap(volFrame(10))); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	first, err := node.FitState()
	if err != nil {
		t.Fatalf("FitState: %v", err)
	}

	vals := make([]float64, 10)
	for i := range vals {
		if i%2 == 0 {
			vals[i] = 2
		} else {
			vals[i] = -2
		}
	}
	doubled := frame.MustNew(dates(10), frame.Column{Name: "close", Values: vals})
	if _, err := node.Fit(inputMap(doubled)); err != nil {
		t.Fatalf("re-fit should proceed, got: %v", err)
	}
	second, err := node.FitState()
	if err != nil {
		t.Fatalf("FitState: %v", err)
	}
	if first["scale_factor"] == second["scale_factor"] {
		t.Error("re-fit did not relearn the scale factor")
	}
	info := node.Info(dataflow.MethodFit)
	if info["scale_factor"] != second["scale_factor"] {
		t.Errorf("fit info scale_factor = %v, want %v after re-fit",
			info["scale_factor"], second["scale_factor"])
	}
}

func TestVolatilityNormalizer_FitStateErrors(t *testing.T) {
	node, err := dataflow.NewVolatilityNormalizer("norm", "close", 0.2, "")
	if err != nil {
		t.Fatalf("NewVolatilityNormalizer: %v", err)
	}
	if _, err := node.FitState(); err == nil {
		t.Error("expected error extracting state before fit")
	}
	if err := node.SetFitState(dataflow.FitState{}); err == nil {
		t.Error("expected error for state missing scale_factor")
	}
	if err := node.SetFitState(dataflow.FitState{"scale_factor": "nope"}); err == nil {
		t.Error("expected error for wrongly typed scale_factor")
	}
}

func TestNewVolatilityNormalizer_Invalid(t *testing.T) {
	if _, err := dataflow.NewVolatilityNormalizer("norm", "close", 0.2, dataflow.ColModeReplaceSelected); err == nil {
		t.Error("expected error for replace_selected mode")
	}
	if _, err := dataflow.NewVolatilityNormalizer("norm", "close", 0, ""); err == nil {
		t.Error("expected error for non-positive target volatility")
	}
}

func TestVolatilityNormalizer_ConstantColumn(t *testing.T) {
	flat := frame.MustNew(dates(10), frame.Column{Name: "close", Values: make([]float64, 10)})
	node, err := dataflow.NewVolatilityNormalizer("norm", "close", 0.2, "")
	if err != nil {
		t.Fatalf("NewVolatilityNormalizer: %v", err)
	}
	if _, err := node.Fit(inputMap(flat)); err == nil {
		t.Fatal("expected error for zero-volatility column")
	}
}
