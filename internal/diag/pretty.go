package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"tukun/internal/source"
)

// PrettyOpts controls Pretty output.
type PrettyOpts struct {
	Color   bool
	Context bool // print the source line with a caret underline
}

// Pretty writes each diagnostic as
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//
// optionally followed by the offending line and a ^~~ marker, then notes.
func Pretty(w io.Writer, bag *Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		c := d.Severity.Color()
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		sev := c.Sprint(d.Severity.String())
		fmt.Fprintf(w, "%s: %s %s: %s\n", fs.Position(d.Primary), sev, d.Code, d.Message)
		if opts.Context {
			writeContext(w, fs, d.Primary)
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  note: %s: %s\n", fs.Position(n.Span), n.Msg)
		}
	}
}

func writeContext(w io.Writer, fs *source.FileSet, sp source.Span) {
	start, end := fs.Resolve(sp)
	line := fs.Get(sp.File).Line(start.Line)
	if line == "" {
		return
	}
	col := int(start.Col) - 1
	if col > len(line) {
		col = len(line)
	}
	width := 1
	if end.Line == start.Line && end.Col > start.Col {
		width = int(end.Col - start.Col)
	}
	if col+width > len(line) {
		width = max(1, len(line)-col)
	}
	// pad by display width so wide runes before the span keep the caret aligned
	pad := strings.Repeat(" ", runewidth.StringWidth(line[:col]))
	marker := "^" + strings.Repeat("~", max(0, runewidth.StringWidth(line[col:col+width])-1))
	fmt.Fprintf(w, "  %s\n  %s%s\n", line, pad, marker)
}
