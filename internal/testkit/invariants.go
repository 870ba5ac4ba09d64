// Package testkit holds structural checks shared by assembler tests and
// fuzz targets.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"tukun/internal/asm"
	"tukun/internal/source"
)

// CheckSpanInvariants verifies the spans of a parsed module against sf:
// every span is non-empty and inside the file; instructions appear in
// source order without overlapping; an instruction covers its operand;
// a function starts before its blocks and a block before its instructions.
func CheckSpanInvariants(m *asm.Module, sf *source.File) error {
	if m == nil || sf == nil {
		return fmt.Errorf("nil module or file")
	}
	size, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	inFile := func(what string, sp source.Span) error {
		if sp.End <= sp.Start {
			return fmt.Errorf("%s: empty span %v", what, sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("%s: span file mismatch: got=%d want=%d", what, sp.File, sf.ID)
		}
		if sp.End > size {
			return fmt.Errorf("%s: span %v ends beyond content (%d bytes)", what, sp, size)
		}
		return nil
	}

	for _, a := range m.Attributes {
		if err := inFile("@"+a.Name, a.Span); err != nil {
			return err
		}
	}
	for _, c := range m.Constants {
		if err := inFile("const "+c.Name, c.Span); err != nil {
			return err
		}
	}
	for name, td := range m.Types {
		if td.Builtin {
			continue
		}
		if err := inFile("typedef "+name, td.Span); err != nil {
			return err
		}
	}

	for _, f := range m.Functions {
		if err := inFile("fn "+f.Name, f.Span); err != nil {
			return err
		}
		prevEnd := f.Span.End
		for _, b := range f.Blocks {
			where := f.Name + ":" + b.Label
			if err := inFile(where, b.Span); err != nil {
				return err
			}
			if b.Span.Start < prevEnd {
				return fmt.Errorf("%s: block starts at %d before the preceding item ends at %d", where, b.Span.Start, prevEnd)
			}
			prevEnd = b.Span.End
			for i, in := range b.Instrs {
				iwhere := fmt.Sprintf("%s#%d %s", where, i, in.Mnemonic)
				if err := inFile(iwhere, in.Span); err != nil {
					return err
				}
				if in.Span.Start < prevEnd {
					return fmt.Errorf("%s: starts at %d before the preceding item ends at %d", iwhere, in.Span.Start, prevEnd)
				}
				if op := in.Operand; op.Kind != asm.OperandNone &&
					(op.Span.Start < in.Span.Start || op.Span.End > in.Span.End) {
					return fmt.Errorf("%s: operand span %v outside instruction span %v", iwhere, op.Span, in.Span)
				}
				prevEnd = in.Span.End
			}
		}
	}
	return nil
}
