// Package builder assembles dataflow graphs from YAML pipeline
// configs: a named list of typed nodes plus slot-to-slot edges.
package builder

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the YAML representation of a pipeline.
type Config struct {
	Name  string       `yaml:"name"`
	Nodes []NodeConfig `yaml:"nodes"`
	Edges []EdgeConfig `yaml:"edges"`
}

// NodeConfig declares one node: a unique id, a registered kind, and
// kind-specific parameters.
type NodeConfig struct {
	ID     string         `yaml:"id"`
	Kind   string         `yaml:"kind"`
	Params map[string]any `yaml:"params"`
}

// EdgeConfig declares one edge as "nid.slot" endpoints. The slot part
// may be omitted when the node has a single output (from) or single
// input (to).
type EdgeConfig struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Parse decodes a pipeline config from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse pipeline config: %w", err)
	}
	if len(cfg.Nodes) == 0 {
		return nil, fmt.Errorf("pipeline config declares no nodes")
	}
	return &cfg, nil
}

// Load reads and parses a pipeline config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// splitEndpoint splits "nid.slot" into its parts; slot is empty when
// omitted.
func splitEndpoint(s string) (nid, slot string) {
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}
