package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tukun/internal/config"
	"tukun/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "tukun",
	Short:         "Assembler and virtual machine for tukun bytecode modules",
	Long:          `tukun assembles .tkasm sources into binary modules and executes them on a stack-based VM`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := applyColorFlag(cmd); err != nil {
			return err
		}
		project, err := loadProject(cmd)
		if err != nil {
			return err
		}
		cleanup, err := setupTracing(cmd, project)
		if err != nil {
			return err
		}
		traceCleanup = cleanup
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		runTraceCleanup()
	},
}

// traceCleanup flushes and closes the tracer built for the current command.
var traceCleanup func()

func runTraceCleanup() {
	if traceCleanup != nil {
		traceCleanup()
		traceCleanup = nil
	}
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(asmCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(disasmCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "path to "+config.FileName+" (default: search upward from the working directory)")
	rootCmd.PersistentFlags().Bool("no-config", false, "ignore "+config.FileName)
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().String("trace-format", "text", "trace event format (text|ndjson)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 1024, "events kept by the ring tracer")

	err := rootCmd.Execute()
	runTraceCleanup()
	if err != nil {
		if _, isExit := err.(exitError); !isExit {
			fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("error:"), err)
		}
		os.Exit(1)
	}
}

// exitError signals a failure whose report has already been printed.
type exitError struct{}

func (exitError) Error() string { return "exit status 1" }

func applyColorFlag(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout) || !isTerminal(os.Stderr)
	default:
		return fmt.Errorf("invalid --color %q (expected auto|on|off)", mode)
	}
	return nil
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
