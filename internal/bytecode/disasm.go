package bytecode

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const poolDisplayWidth = 32

// Disassemble writes a listing of body. pool holds the rendered interned
// values of the owning module and is used to annotate PUSH operands; it may
// be nil.
func Disassemble(w io.Writer, name string, body *Bytecode, pool []string) error {
	var sb strings.Builder
	if name != "" {
		fmt.Fprintf(&sb, "; === %s ===\n", name)
	}
	fmt.Fprintf(&sb, "; %d bytes\n", body.Len())

	for off := 0; off < body.Len(); {
		ins, next, err := Decode(body, off)
		if err != nil {
			fmt.Fprintf(&sb, "%04X  <%v>\n", off, err)
			break
		}
		sb.WriteString(formatLine(off, ins, pool))
		off = next
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func formatLine(off int, ins Instruction, pool []string) string {
	if ins.Op.OperandLen() == 0 {
		return fmt.Sprintf("%04X  %s\n", off, ins.Op)
	}
	line := fmt.Sprintf("%04X  %-9s %5d", off, ins.Op, ins.Arg)
	switch {
	case ins.Op == PUSH:
		if int(ins.Arg) < len(pool) {
			line += "  ; " + truncate(pool[ins.Arg])
		} else {
			line += "  ; <missing>"
		}
	case ins.Op.IsJump():
		line += fmt.Sprintf("  ; -> %04X", ins.Arg)
	}
	return line + "\n"
}

func truncate(s string) string {
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	return runewidth.Truncate(s, poolDisplayWidth, "...")
}

// PadRight pads s with spaces to the given display width.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}
