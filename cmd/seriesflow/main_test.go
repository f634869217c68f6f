package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/meridian-research/seriesflow/pkg/dataflow"
)

// ─── TestBuildPipeline ────────────────────────────────────────────────────────

const samplePipeline = `
name: sample
nodes:
  - id: walk
    kind: random_walk_source
    params:
      start: "2020-01-01"
      end: "2020-02-01"
      seed: 3
  - id: z
    kind: zscore
    params:
      cols: [close]
edges:
  - from: walk
    to: z
`

func writePipeline(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("write pipeline: %v", err)
	}
	return path
}

func TestBuildPipeline_Valid(t *testing.T) {
	dag, err := buildPipeline(writePipeline(t, samplePipeline))
	if err != nil {
		t.Fatalf("buildPipeline: %v", err)
	}
	if dag.Name() != "sample" {
		t.Errorf("name = %q, want sample", dag.Name())
	}
	if _, err := dag.RunLeqNode("z", dataflow.MethodFit); err != nil {
		t.Errorf("RunLeqNode: %v", err)
	}
}

func TestBuildPipeline_MissingFile(t *testing.T) {
	_, err := buildPipeline(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing pipeline file")
	}
}

func TestBuildPipeline_InvalidGraph(t *testing.T) {
	// A transformer with no inbound edge must fail validation at build
	// time, before any run command executes it.
	src := `
name: broken
nodes:
  - id: z
    kind: zscore
`
	if _, err := buildPipeline(writePipeline(t, src)); err == nil {
		t.Fatal("expected validation error")
	}
}

// ─── TestInitLogger ───────────────────────────────────────────────────────────

func TestInitLogger_ValidLevels(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error", "DEBUG", "INFO"} {
		if err := initLogger(lvl, "text"); err != nil {
			t.Errorf("initLogger(%q, text): unexpected error: %v", lvl, err)
		}
	}
}

func TestInitLogger_ValidFormats(t *testing.T) {
	for _, format := range []string{"text", "json", "TEXT", "JSON"} {
		if err := initLogger("info", format); err != nil {
			t.Errorf("initLogger(info, %q): unexpected error: %v", format, err)
		}
	}
}

func TestInitLogger_InvalidLevel(t *testing.T) {
	if err := initLogger("verbose", "text"); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestInitLogger_InvalidFormat(t *testing.T) {
	if err := initLogger("info", "xml"); err == nil {
		t.Fatal("expected error for unknown log format")
	}
}
