package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meridian-research/seriesflow/pkg/dataflow"
	"github.com/meridian-research/seriesflow/pkg/dataflow/builder"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	root := &cobra.Command{
		Use:   "seriesflow",
		Short: "seriesflow — time-series dataflow pipeline runner",
		Long: `Seriesflow executes dataflow graphs of fit/predict nodes over
time-indexed tables.

Pipelines are declared in YAML: typed source and transformer nodes plus
slot-to-slot edges. Each pipeline can be run in "fit" (training) or
"predict" (inference) mode with causal interval sampling at the sources.`,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return initLogger(logLevel, logFormat)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")
	root.AddCommand(runCmd())
	root.AddCommand(lintCmd())
	root.AddCommand(renderCmd())
	return root
}

// initLogger configures the process-wide slog default.
func initLogger(level, format string) error {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q: use debug, info, warn or error", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("unknown log format %q: use text or json", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// ─── run ──────────────────────────────────────────────────────────────────────

func runCmd() *cobra.Command {
	var (
		target     string
		methodName string
		showInfo   bool
	)

	cmd := &cobra.Command{
		Use:   "run <pipeline.yaml>",
		Short: "Build a pipeline and execute it for a target node",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dag, err := buildPipeline(args[0])
			if err != nil {
				return err
			}
			method, err := dataflow.ParseMethod(methodName)
			if err != nil {
				return err
			}
			if target == "" {
				target, err = dag.UniqueSink()
				if err != nil {
					return fmt.Errorf("no --target given and %w", err)
				}
			}
			outputs, err := dag.RunLeqNode(target, method)
			if err != nil {
				return err
			}
			for name, df := range outputs {
				fmt.Printf("%s.%s: %s\n", target, name, df.Summary())
			}
			if showInfo {
				node, err := dag.Get(target)
				if err != nil {
					return err
				}
				for key, value := range node.Info(method) {
					fmt.Printf("info[%s] = %v\n", key, value)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "terminal node id (default: the unique sink)")
	cmd.Flags().StringVar(&methodName, "method", "fit", "method to run: fit or predict")
	cmd.Flags().BoolVar(&showInfo, "info", false, "print the target node's diagnostic info")
	return cmd
}

// ─── lint ─────────────────────────────────────────────────────────────────────

func lintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <pipeline.yaml>",
		Short: "Validate a pipeline config without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dag, err := buildPipeline(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("OK: pipeline %q is valid (%d nodes, %d edges)\n",
				dag.Name(), len(dag.NodeIDs()), len(dag.Edges()))
			return nil
		},
	}
	return cmd
}

// ─── render ───────────────────────────────────────────────────────────────────

func renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <pipeline.yaml>",
		Short: "Print a pipeline as a Graphviz DOT digraph",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dag, err := buildPipeline(args[0])
			if err != nil {
				return err
			}
			dot, err := dataflow.WriteDOT(dag)
			if err != nil {
				return err
			}
			fmt.Print(dot)
			return nil
		},
	}
	return cmd
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func buildPipeline(path string) (*dataflow.DAG, error) {
	cfg, err := builder.Load(path)
	if err != nil {
		return nil, err
	}
	dag, err := builder.Build(cfg, builder.DefaultFactory())
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}
	return dag, nil
}
