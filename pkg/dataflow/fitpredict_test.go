package dataflow_test

import (
	"testing"

	"github.com/meridian-research/seriesflow/pkg/dataflow"
)

func TestSetInfo_DefensiveCopy(t *testing.T) {
	// The store keeps its own copy on both write and read: a caller
	// mutating the map it passed in, or the map it got back, must not
	// corrupt the recorded diagnostics.
	base := dataflow.NewFitPredictBase("n", nil, nil)
	values := dataflow.Info{"rows": 5}
	base.SetInfo(dataflow.MethodFit, values)

	values["rows"] = 99
	got := base.Info(dataflow.MethodFit)
	if got["rows"] != 5 {
		t.Errorf("stored info rows = %v after writer mutation, want 5", got["rows"])
	}

	got["rows"] = 42
	if again := base.Info(dataflow.MethodFit); again["rows"] != 5 {
		t.Errorf("stored info rows = %v after reader mutation, want 5", again["rows"])
	}
}

func TestSetInfo_RefitOverwrites(t *testing.T) {
	// Recording fit info a second time warns but proceeds, replacing
	// the previous record.
	base := dataflow.NewFitPredictBase("n", nil, nil)
	base.SetInfo(dataflow.MethodFit, dataflow.Info{"rows": 5})
	base.SetInfo(dataflow.MethodFit, dataflow.Info{"rows": 7})
	if got := base.Info(dataflow.MethodFit); got["rows"] != 7 {
		t.Errorf("info rows = %v after re-record, want 7", got["rows"])
	}
}
