package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"qgadget/circuit"
	"qgadget/cmd/qgadget/view"
	"qgadget/config"
	"qgadget/expr"
	"qgadget/gadget"
	"qgadget/qasm"
	"qgadget/subst"
	"qgadget/symbol"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	debug      bool

	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "qgadget",
		Short: "Merge phase gadgets in symbolic quantum circuits",
		Long: `qgadget reads OpenQASM 2.0 circuits whose rotation angles may be
symbolic, merges phase gadgets that act on the same qubits, and binds
symbols to numbers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "config file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "debug logging")

	root.AddCommand(a.mergeCmd(), a.bindCmd(), a.statsCmd(), a.viewCmd())
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.Log.Debug = true
	}
	a.cfg = cfg

	log, err := cfg.Logger()
	if err != nil {
		return errors.Wrap(err, "create logger")
	}
	a.log = log
	return nil
}

func (a *app) mergeCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "merge FILE",
		Short: "Merge phase gadgets and print the rewritten QASM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readCircuit(args[0])
			if err != nil {
				return err
			}
			merged := gadget.Merge(c, a.cfg.MergeOptions(a.log))
			a.log.Info("merged circuit",
				zap.String("file", args[0]),
				zap.Int("gates_before", c.Len()),
				zap.Int("gates_after", merged.Len()))
			return writeOutput(cmd.OutOrStdout(), output, qasm.Write(merged))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write QASM to this file instead of stdout")
	return cmd
}

func (a *app) bindCmd() *cobra.Command {
	var (
		bindingsPath string
		merge        bool
		output       string
	)
	cmd := &cobra.Command{
		Use:   "bind FILE",
		Short: "Substitute symbol values and print the resulting QASM",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readCircuit(args[0])
			if err != nil {
				return err
			}
			b, err := readBindings(c, bindingsPath)
			if err != nil {
				return err
			}
			if merge {
				c = gadget.Merge(c, a.cfg.MergeOptions(a.log))
			}
			bound := subst.Apply(c, b, a.cfg.SubstituteOptions(a.log))
			if free := bound.Symbols(); len(free) > 0 {
				a.log.Warn("circuit still has free symbols", zap.Stringers("symbols", free))
			}
			return writeOutput(cmd.OutOrStdout(), output, qasm.Write(bound))
		},
	}
	cmd.Flags().StringVarP(&bindingsPath, "bindings", "b", "", "YAML file mapping symbol names to half-turn values")
	cmd.Flags().BoolVar(&merge, "merge", false, "merge phase gadgets before binding")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write QASM to this file instead of stdout")
	_ = cmd.MarkFlagRequired("bindings")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats FILE",
		Short: "Show gate counts before and after merging",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readCircuit(args[0])
			if err != nil {
				return err
			}
			merged := gadget.Merge(c, a.cfg.MergeOptions(a.log))
			matches := gadget.Find(c)

			out := cmd.OutOrStdout()
			before, after := c.Stats(), merged.Stats()
			fmt.Fprintf(out, "%-10s %8s %8s\n", "", "before", "after")
			row := func(name string, x, y int) { fmt.Fprintf(out, "%-10s %8d %8d\n", name, x, y) }
			row("qubits", before.Qubits, after.Qubits)
			row("gates", before.Gates, after.Gates)
			row("cx", before.CX, after.CX)
			row("rz", before.Rotations, after.Rotations)
			row("opaque", before.Opaque, after.Opaque)
			row("depth", before.Depth, after.Depth)
			row("symbols", before.Symbols, after.Symbols)
			row("gadgets", len(matches), len(gadget.Find(merged)))
			return nil
		},
	}
}

func (a *app) viewCmd() *cobra.Command {
	var bindingsPath string
	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "Browse the circuit, its merged form and its bound form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readCircuit(args[0])
			if err != nil {
				return err
			}
			var text []byte
			if bindingsPath != "" {
				if text, err = os.ReadFile(bindingsPath); err != nil {
					return errors.Wrap(err, "read bindings")
				}
			}
			// the TUI owns the terminal
			opts := a.cfg.MergeOptions(zap.NewNop())
			sopts := a.cfg.SubstituteOptions(zap.NewNop())
			return view.Run(view.New(c, opts, sopts, string(text)))
		},
	}
	cmd.Flags().StringVarP(&bindingsPath, "bindings", "b", "", "YAML file with initial bindings")
	return cmd
}

func readCircuit(path string) (*circuit.Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read circuit")
	}
	c, err := qasm.Parse(string(data), symbol.NewRegistry())
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return c, nil
}

func readBindings(c *circuit.Circuit, path string) (expr.Bindings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read bindings")
	}
	values := make(map[string]float64)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(err, "parse bindings %s", path)
	}
	return subst.Bind(c, values)
}

func writeOutput(stdout io.Writer, path, text string) error {
	if path == "" {
		_, err := io.WriteString(stdout, text)
		return err
	}
	return errors.Wrapf(os.WriteFile(path, []byte(text), 0o644), "write %s", path)
}
