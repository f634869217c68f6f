package builder

import (
	"fmt"

	"github.com/meridian-research/seriesflow/pkg/dataflow"
)

// Build assembles a connected DAG from a pipeline config using the
// factory's registered kinds. The returned graph has passed
// ValidateErr.
func Build(cfg *Config, factory *Factory) (*dataflow.DAG, error) {
	dag := dataflow.NewDAG(cfg.Name)
	for _, nc := range cfg.Nodes {
		if nc.ID == "" {
			return nil, fmt.Errorf("node config missing id")
		}
		node, err := factory.New(nc.Kind, nc.ID, nc.Params)
		if err != nil {
			return nil, err
		}
		if err := dag.Add(node); err != nil {
			return nil, err
		}
	}
	for _, ec := range cfg.Edges {
		if err := connect(dag, ec); err != nil {
			return nil, err
		}
	}
	if err := dag.ValidateErr(); err != nil {
		return nil, err
	}
	return dag, nil
}

// connect resolves an edge config's endpoints, defaulting omitted slot
// names to the node's sole output/input.
func connect(dag *dataflow.DAG, ec EdgeConfig) error {
	fromID, fromSlot := splitEndpoint(ec.From)
	toID, toSlot := splitEndpoint(ec.To)
	if fromSlot == "" {
		producer, err := dag.Get(fromID)
		if err != nil {
			return err
		}
		outs := producer.OutputNames()
		if len(outs) != 1 {
			return fmt.Errorf("edge %q -> %q: node %q has %d outputs; use nid.slot", ec.From, ec.To, fromID, len(outs))
		}
		fromSlot = outs[0]
	}
	if toSlot == "" {
		consumer, err := dag.Get(toID)
		if err != nil {
			return err
		}
		ins := consumer.InputNames()
		if len(ins) != 1 {
			return fmt.Errorf("edge %q -> %q: node %q has %d inputs; use nid.slot", ec.From, ec.To, toID, len(ins))
		}
		toSlot = ins[0]
	}
	return dag.Connect(fromID, fromSlot, toID, toSlot)
}
