package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tukun/internal/asm"
	"tukun/internal/config"
	"tukun/internal/diag"
	"tukun/internal/module"
	"tukun/internal/observ"
	"tukun/internal/source"
	"tukun/internal/trace"
)

var asmCmd = &cobra.Command{
	Use:   "asm [flags] <input.tkasm>",
	Short: "Assemble a source file into a binary module",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsm,
}

func init() {
	asmCmd.Flags().StringP("output", "o", "", "output module path (default: input with .tkm extension)")
	asmCmd.Flags().String("format", "msgpack", "module encoding (msgpack|cbor)")
	asmCmd.Flags().Bool("timings", false, "print the duration of each assembly phase")
	asmCmd.Flags().Int("max-diagnostics", 100, "maximum number of diagnostics to collect")
	asmCmd.Flags().String("diagnostics-format", "pretty", "diagnostics output format (pretty|json)")
}

type asmOptions struct {
	input    string
	output   string
	format   module.Format
	timings  bool
	maxDiags int
	diagJSON bool
	tracer   trace.Tracer
	color    bool
}

func runAsm(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	output, err := flags.GetString("output")
	if err != nil {
		return fmt.Errorf("failed to get output flag: %w", err)
	}
	formatStr, err := setting(flags, "format", flags.GetString, func(p *config.Project) (string, bool) {
		return p.File.Asm.Format, p.IsSet("asm", "format")
	})
	if err != nil {
		return err
	}
	format, err := module.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	timings, err := flags.GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	maxDiags, err := flags.GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	diagFormat, err := flags.GetString("diagnostics-format")
	if err != nil {
		return fmt.Errorf("failed to get diagnostics-format flag: %w", err)
	}
	switch diagFormat {
	case "pretty", "json":
	default:
		return fmt.Errorf("unsupported diagnostics format %q (must be pretty or json)", diagFormat)
	}

	opts := asmOptions{
		input:    args[0],
		output:   output,
		format:   format,
		timings:  timings,
		maxDiags: maxDiags,
		diagJSON: diagFormat == "json",
		tracer:   trace.FromContext(cmd.Context()),
		color:    !color.NoColor,
	}
	return assembleToFile(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
}

// defaultOutput swaps the extension of input for .tkm.
func defaultOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".tkm"
}

func assembleToFile(stdout, stderr io.Writer, opts asmOptions) error {
	if opts.output == "" {
		opts.output = defaultOutput(opts.input)
	}
	timer := observ.NewTimer()

	fs := source.NewFileSet()
	var id source.FileID
	err := timer.Measure("read", func() error {
		var rerr error
		id, rerr = fs.Load(opts.input)
		return rerr
	})
	if err != nil {
		return err
	}

	res, err := asm.AssembleFile(fs, id,
		asm.WithTimer(timer),
		asm.WithTracer(opts.tracer),
		asm.WithMaxDiagnostics(opts.maxDiags),
	)
	if err != nil {
		var ae *asm.Error
		if errors.As(err, &ae) && res.Bag.Len() > 0 {
			if opts.diagJSON {
				if jerr := diag.JSON(stdout, res.Bag, fs, opts.maxDiags); jerr != nil {
					return jerr
				}
			} else {
				diag.Pretty(stderr, res.Bag, fs, diag.PrettyOpts{Color: opts.color, Context: true})
			}
			return exitError{}
		}
		return err
	}

	err = timer.Measure("write", func() error {
		data, serr := asm.Serialize(res.Module, opts.format)
		if serr != nil {
			return serr
		}
		return os.WriteFile(opts.output, data, 0o644)
	})
	if err != nil {
		return err
	}
	trace.Point(opts.tracer, trace.ScopeDriver, "wrote", opts.output)

	if opts.timings {
		fmt.Fprint(stdout, timer.Summary())
	}
	return nil
}
