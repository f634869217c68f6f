package dataflow_test

import (
	"strings"
	"testing"

	"github.com/meridian-research/seriesflow/pkg/dataflow"
	"github.com/meridian-research/seriesflow/pkg/frame"
)

func TestWriteDOT(t *testing.T) {
	df := frame.MustNew(dates(3), frame.Column{Name: "a", Values: seq(3)})
	dag := dataflow.NewDAG("demo")
	dag.Add(mustFrameSource(t, "src", df))
	dag.Add(zscoreTransformer(t, "z"))
	if err := dag.ConnectSingle("src", "z"); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	dot, err := dataflow.WriteDOT(dag)
	if err != nil {
		t.Fatalf("WriteDOT: %v", err)
	}
	for _, want := range []string{"digraph", `"demo"`, `"src"`, `"z"`, "->", "df_out -> df_in"} {
		if !strings.Contains(dot, want) {
			t.Errorf("dot output missing %q:\n%s", want, dot)
		}
	}
}
