// Package trace is the logging handle of tukun.
//
// There is no package-level logger. The CLI builds one Tracer from flags and
// configuration and hands it down explicitly: through context.Context for
// the assembler and loader, and on the vm.Environment for execution.
//
// # Levels
//
//   - LevelOff: nothing
//   - LevelError: failures only (ring buffer dumped on error)
//   - LevelPhase: driver operations and assembler phases
//   - LevelDetail: module loading and function calls
//   - LevelDebug: every executed instruction
//
// # Scopes
//
//   - ScopeDriver: CLI commands
//   - ScopePhase: assembler phases (lex, parse, lower, encode)
//   - ScopeModule: module decoding and registration
//   - ScopeCall: function invocations
//   - ScopeInstr: single instructions
//
// # Usage
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePhase, "lower", 0)
//	defer span.End("")
package trace
