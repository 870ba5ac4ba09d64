package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"tukun/internal/bytecode"
	"tukun/internal/module"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] <module.tkm>",
	Short: "Summarize the contents of a module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			return fmt.Errorf("failed to get output flag: %w", err)
		}
		def, err := module.ReadFile(args[0])
		if err != nil {
			return err
		}
		summary := summarize(def)
		switch strings.ToLower(output) {
		case "yaml":
			return writeYAML(cmd.OutOrStdout(), summary)
		case "text":
			writeSummaryText(cmd.OutOrStdout(), summary)
			return nil
		default:
			return fmt.Errorf("unsupported output %q (must be yaml or text)", output)
		}
	},
}

func init() {
	inspectCmd.Flags().String("output", "yaml", "output format (yaml|text)")
}

type moduleSummary struct {
	Name       string            `yaml:"name"`
	Functions  []functionSummary `yaml:"functions"`
	NamedTypes []typeSummary     `yaml:"named_types"`
	Pool       []string          `yaml:"pool"`
}

type functionSummary struct {
	Name         string `yaml:"name"`
	Bytes        int    `yaml:"bytes"`
	Instructions int    `yaml:"instructions"`
}

type typeSummary struct {
	Name   string `yaml:"name"`
	Target string `yaml:"target"`
}

func summarize(def *module.ModuleDef) moduleSummary {
	s := moduleSummary{Name: def.Name, Pool: def.RenderedPool()}
	for _, f := range def.Functions {
		fs := functionSummary{Name: f.Name, Bytes: f.Body.Len()}
		// A body that does not decode still gets its byte count.
		if ins, err := bytecode.DecodeAll(f.Body); err == nil {
			fs.Instructions = len(ins)
		}
		s.Functions = append(s.Functions, fs)
	}
	for _, td := range def.NamedTypes {
		s.NamedTypes = append(s.NamedTypes, typeSummary{Name: td.Name, Target: td.Target.String()})
	}
	return s
}

func writeYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func writeSummaryText(w io.Writer, s moduleSummary) {
	fmt.Fprintf(w, "module %s\n", s.Name)

	width := 0
	for _, f := range s.Functions {
		width = max(width, runewidth.StringWidth(f.Name))
	}
	for _, t := range s.NamedTypes {
		width = max(width, runewidth.StringWidth(t.Name))
	}

	fmt.Fprintf(w, "functions (%d):\n", len(s.Functions))
	for _, f := range s.Functions {
		fmt.Fprintf(w, "  %s  %5d bytes  %4d instructions\n", bytecode.PadRight(f.Name, width), f.Bytes, f.Instructions)
	}
	fmt.Fprintf(w, "named types (%d):\n", len(s.NamedTypes))
	for _, t := range s.NamedTypes {
		fmt.Fprintf(w, "  %s  %s\n", bytecode.PadRight(t.Name, width), t.Target)
	}
	fmt.Fprintf(w, "pool (%d):\n", len(s.Pool))
	for i, v := range s.Pool {
		fmt.Fprintf(w, "  %4d  %s\n", i, v)
	}
}
