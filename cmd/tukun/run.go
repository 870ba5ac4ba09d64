package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tukun/internal/config"
	"tukun/internal/corelib"
	"tukun/internal/module"
	"tukun/internal/prof"
	"tukun/internal/trace"
	"tukun/internal/vm"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] [module.tkm...]",
	Short: "Load modules and execute an entry function",
	Long: `Load one or more binary modules into a fresh environment and call the entry
function. Modules are registered in argument order; the entry defaults to
the main function of the last module. Without arguments the modules listed
in tukun.toml are used.`,
	RunE: runModules,
}

func init() {
	runCmd.Flags().String("main-f", "", "fully-qualified entry function (default: <last module>.main)")
	runCmd.Flags().Bool("dump-stack", false, "pop and print every value left on the stack")
	runCmd.Flags().Bool("omit-corelib", false, "do not register the corelib module")
	runCmd.Flags().Int("max-depth", 0, "maximum call depth (0 = unbounded)")
	runCmd.Flags().String("cpuprofile", "", "write a CPU profile of the run to this file")
	runCmd.Flags().String("memprofile", "", "write a heap profile after the run to this file")
	runCmd.Flags().String("exec-trace", "", "write a Go execution trace of the run to this file")
}

type runOptions struct {
	paths       []string
	entry       string
	dumpStack   bool
	omitCorelib bool
	maxDepth    int
	tracer      trace.Tracer
}

func runModules(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	entry, err := setting(flags, "main-f", flags.GetString, func(p *config.Project) (string, bool) {
		return p.File.Run.Entry, p.IsSet("run", "entry")
	})
	if err != nil {
		return err
	}
	dumpStack, err := flags.GetBool("dump-stack")
	if err != nil {
		return fmt.Errorf("failed to get dump-stack flag: %w", err)
	}
	omitCorelib, err := setting(flags, "omit-corelib", flags.GetBool, func(p *config.Project) (bool, bool) {
		return p.File.Run.OmitCorelib, p.IsSet("run", "omit_corelib")
	})
	if err != nil {
		return err
	}
	maxDepth, err := setting(flags, "max-depth", flags.GetInt, func(p *config.Project) (int, bool) {
		return p.File.Run.MaxDepth, p.IsSet("run", "max_depth")
	})
	if err != nil {
		return err
	}

	var profOpts prof.Options
	for flag, dst := range map[string]*string{"cpuprofile": &profOpts.CPU, "memprofile": &profOpts.Mem, "exec-trace": &profOpts.Trace} {
		if *dst, err = flags.GetString(flag); err != nil {
			return fmt.Errorf("failed to get %s flag: %w", flag, err)
		}
	}

	paths := args
	if len(paths) == 0 && project != nil {
		paths = project.ModulePaths()
	}
	if len(paths) == 0 {
		return errors.New("no modules given\nplease pass module files, e.g.:\n  tukun run app.tkm\nor list them under [run].modules in " + config.FileName)
	}

	opts := runOptions{
		paths:       paths,
		entry:       entry,
		dumpStack:   dumpStack,
		omitCorelib: omitCorelib,
		maxDepth:    maxDepth,
		tracer:      trace.FromContext(cmd.Context()),
	}
	var session *prof.Session
	if profOpts.Enabled() {
		if session, err = prof.Start(profOpts); err != nil {
			return err
		}
	}
	env, err := execute(cmd.Context(), cmd.OutOrStdout(), opts)
	if perr := session.Stop(); perr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "profile: %v\n", perr)
	}
	if err != nil {
		var vmErr *vm.Error
		if errors.As(err, &vmErr) {
			reportVMError(cmd.ErrOrStderr(), vmErr)
			dumpRing(cmd)
			return exitError{}
		}
		return err
	}
	if opts.dumpStack {
		dumpStackValues(cmd.OutOrStdout(), env)
	}
	return nil
}

// loadModules reads and decodes every path concurrently. The result keeps
// the argument order.
func loadModules(ctx context.Context, tracer trace.Tracer, paths []string) ([]*module.ModuleDef, error) {
	defs := make([]*module.ModuleDef, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			span := trace.Begin(tracer, trace.ScopeModule, "decode", 0).WithExtra("path", path)
			def, err := module.ReadFile(path)
			if err != nil {
				span.End("failed")
				return err
			}
			span.End(def.Name)
			defs[i] = def
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return defs, nil
}

// execute builds an environment from opts and runs the entry function. The
// environment is returned even when the run fails.
func execute(ctx context.Context, out io.Writer, opts runOptions) (*vm.Environment, error) {
	defs, err := loadModules(ctx, opts.tracer, opts.paths)
	if err != nil {
		return nil, err
	}

	env := vm.NewEnvironment(
		vm.WithTracer(opts.tracer),
		vm.WithOutput(out),
		vm.WithMaxDepth(opts.maxDepth),
	)
	if !opts.omitCorelib {
		corelib.Register(env)
	}
	for _, def := range defs {
		env.AddModule(vm.LoadModule(def))
	}

	entry := opts.entry
	if entry == "" {
		entry = defs[len(defs)-1].Name + ".main"
	}
	fn, ok := env.LookupFunction(entry)
	if !ok {
		return env, fmt.Errorf("entry function %s not found", entry)
	}
	return env, vm.Run(ctx, fn, env)
}

func reportVMError(w io.Writer, err *vm.Error) {
	red := color.New(color.FgRed, color.Bold)
	dim := color.New(color.Faint)
	fmt.Fprintf(w, "%s %s %s at %d: %s\n", red.Sprint("error:"), err.Data.Code, err.Data.Code.Name(), err.Ptr, err.Data.Detail())
	if len(err.Backtrace) == 0 {
		return
	}
	fmt.Fprintln(w, dim.Sprint("backtrace:"))
	for i, f := range err.Backtrace {
		fmt.Fprintf(w, "  %s %s\n", dim.Sprintf("%d:", i), f)
	}
}

// dumpStackValues pops the stack, printing the top value first.
func dumpStackValues(w io.Writer, env *vm.Environment) {
	var sb strings.Builder
	for {
		v, ok := env.Pop()
		if !ok {
			break
		}
		sb.WriteString(v.String())
		sb.WriteByte('\n')
	}
	_, _ = io.WriteString(w, sb.String())
}
