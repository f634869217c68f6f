package builder_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/meridian-research/seriesflow/pkg/dataflow"
	"github.com/meridian-research/seriesflow/pkg/dataflow/builder"
)

const walkPipeline = `
name: walk-zscore
nodes:
  - id: walk
    kind: random_walk_source
    params:
      start: "2020-01-01"
      end: "2020-03-01"
      seed: 7
  - id: z
    kind: zscore
    params:
      cols: [close]
edges:
  - from: walk
    to: z
`

func TestBuild_FromYAML(t *testing.T) {
	cfg, err := builder.Parse([]byte(walkPipeline))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Name != "walk-zscore" {
		t.Errorf("name = %q, want walk-zscore", cfg.Name)
	}
	dag, err := builder.Build(cfg, builder.DefaultFactory())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if diff := cmp.Diff([]string{"walk", "z"}, dag.NodeIDs()); diff != "" {
		t.Errorf("node ids mismatch:\n%s", diff)
	}

	outputs, err := dag.Run(dataflow.MethodFit)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := outputs[dataflow.DefaultOutput]
	if !out.HasColumn("close_z") {
		t.Errorf("columns = %v, want close_z present", out.Columns())
	}
	// vol was not selected for transformation and passes through.
	if !out.HasColumn("vol") {
		t.Errorf("columns = %v, want vol present", out.Columns())
	}
}

func TestBuild_ExplicitSlots(t *testing.T) {
	src := `
name: explicit
nodes:
  - id: walk
    kind: random_walk_source
    params:
      start: "2020-01-01"
      end: "2020-02-01"
  - id: d
    kind: diff
edges:
  - from: walk.df_out
    to: d.df_in
`
	cfg, err := builder.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := builder.Build(cfg, builder.DefaultFactory()); err != nil {
		t.Fatalf("Build: %v", err)
	}
}

func TestBuild_UnknownKind(t *testing.T) {
	cfg := &builder.Config{
		Name:  "p",
		Nodes: []builder.NodeConfig{{ID: "n", Kind: "teleporter"}},
	}
	_, err := builder.Build(cfg, builder.DefaultFactory())
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !strings.Contains(err.Error(), "unknown node kind") {
		t.Errorf("error = %q, want unknown-kind message", err)
	}
}

func TestBuild_UnknownEdgeEndpoint(t *testing.T) {
	src := `
name: p
nodes:
  - id: walk
    kind: random_walk_source
    params:
      start: "2020-01-01"
      end: "2020-02-01"
edges:
  - from: walk
    to: ghost
`
	cfg, err := builder.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := builder.Build(cfg, builder.DefaultFactory()); err == nil {
		t.Fatal("expected error for unknown edge endpoint")
	}
}

func TestBuild_UnconnectedInputFailsValidation(t *testing.T) {
	src := `
name: p
nodes:
  - id: z
    kind: zscore
`
	cfg, err := builder.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, err := builder.Build(cfg, builder.DefaultFactory()); err == nil {
		t.Fatal("expected validation error for unconnected input")
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := builder.Parse([]byte("{not yaml")); err == nil {
		t.Error("expected error for malformed YAML")
	}
	if _, err := builder.Parse([]byte("name: empty\n")); err == nil {
		t.Error("expected error for config with no nodes")
	}
}

func TestFactory_RegisterCustomKind(t *testing.T) {
	f := builder.NewFactory()
	f.Register("custom", func(id string, params map[string]any) (dataflow.FitPredictNode, error) {
		return dataflow.NewColumnTransformer(id, builder.Diff, dataflow.ColumnTransformerConfig{})
	})
	node, err := f.New("custom", "n", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if node.ID() != "n" {
		t.Errorf("id = %q, want n", node.ID())
	}
}
