// Package token defines the lexical tokens of tukun assembly.
//
// Whitespace, newlines and '#' comments are trivia and never reach the
// parser; instructions are delimited by their operand arity alone, so
// several may share a line. Mnemonics, directive names and attribute names
// are plain identifiers and are classified by the parser.
package token
