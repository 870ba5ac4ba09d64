package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tukun/internal/config"
	"tukun/internal/trace"
)

// setupTracing builds the tracer from the trace flags, falling back to the
// [trace] section of the project file, and attaches it to the command
// context. It returns a cleanup function.
func setupTracing(cmd *cobra.Command, p *config.Project) (func(), error) {
	flags := cmd.Root().PersistentFlags()

	traceOutput, err := setting(flags, "trace", flags.GetString, func(p *config.Project) (string, bool) {
		return p.Resolve(p.File.Trace.Output), p.IsSet("trace", "output")
	})
	if err != nil {
		return nil, err
	}
	levelStr, err := setting(flags, "trace-level", flags.GetString, func(p *config.Project) (string, bool) {
		return p.File.Trace.Level, p.IsSet("trace", "level")
	})
	if err != nil {
		return nil, err
	}
	modeStr, err := setting(flags, "trace-mode", flags.GetString, func(p *config.Project) (string, bool) {
		return p.File.Trace.Mode, p.IsSet("trace", "mode")
	})
	if err != nil {
		return nil, err
	}
	formatStr, err := setting(flags, "trace-format", flags.GetString, func(p *config.Project) (string, bool) {
		return p.File.Trace.Format, p.IsSet("trace", "format")
	})
	if err != nil {
		return nil, err
	}
	ringSize, err := setting(flags, "trace-ring-size", flags.GetInt, func(p *config.Project) (int, bool) {
		return p.File.Trace.RingSize, p.IsSet("trace", "ring_size")
	})
	if err != nil {
		return nil, err
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}
	// An output file alone turns tracing on at phase level.
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, err
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	cmd.SetContext(ctx)
	cmd.Root().SetContext(ctx)

	cleanup := func() {
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

// dumpRing writes the events kept by a ring tracer, if one is in use.
func dumpRing(cmd *cobra.Command) {
	ring, ok := trace.Ring(trace.FromContext(cmd.Context()))
	if !ok {
		return
	}
	fmt.Fprintln(cmd.ErrOrStderr(), "trace (most recent events):")
	if err := ring.Dump(cmd.ErrOrStderr(), trace.FormatText); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
	}
}
