// Package diag collects assembler diagnostics.
//
// Phases never print. The lexer and parser report through a Reporter, which
// is usually a BagReporter feeding a Bag; the driver decides what to show
// and how (see Pretty).
package diag
