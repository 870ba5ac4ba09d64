package diag

import (
	"bytes"
	"strings"
	"testing"

	"tukun/internal/source"
)

func TestBagLimitAndFirstError(t *testing.T) {
	bag := NewBag(2)
	r := BagReporter{Bag: bag}
	r.Report(LexBadNumber, SevWarning, source.Span{Start: 1, End: 2}, "odd", nil)
	ReportError(r, SynUnexpectedToken, source.Span{Start: 3, End: 4}, "boom")
	ReportError(r, SynExpectOperand, source.Span{Start: 5, End: 6}, "dropped")

	if bag.Len() != 2 {
		t.Fatalf("Len = %d", bag.Len())
	}
	d, ok := bag.FirstError()
	if !ok || d.Code != SynUnexpectedToken {
		t.Fatalf("FirstError = %v %v", d, ok)
	}
}

func TestSort(t *testing.T) {
	bag := NewBag(8)
	bag.Add(NewError(SynExpectOperand, source.Span{Start: 9, End: 10}, "b"))
	bag.Add(New(SevWarning, LexBadNumber, source.Span{Start: 1, End: 2}, "w"))
	bag.Add(NewError(LexBadNumber, source.Span{Start: 1, End: 2}, "e"))
	bag.Sort()
	got := []string{}
	for _, d := range bag.Items() {
		got = append(got, d.Message)
	}
	if want := "e,w,b"; join(got) != want {
		t.Fatalf("order %v, want %s", got, want)
	}
}

func join(ss []string) string {
	var b bytes.Buffer
	for i, s := range ss {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s)
	}
	return b.String()
}

func TestCodeString(t *testing.T) {
	cases := map[Code]string{
		LexUnterminatedString: "LEX1002",
		SynUnknownMnemonic:    "SYN2003",
		AstUndefinedType:      "AST3002",
		UnknownCode:           "E0000",
	}
	for c, want := range cases {
		if c.String() != want {
			t.Errorf("%d: %s, want %s", c, c, want)
		}
	}
	if !LexBadEscape.IsSyntax() || AstDuplicateFn.IsSyntax() {
		t.Errorf("IsSyntax misclassifies")
	}
}

func TestPretty(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("m.tka", []byte("fn main\n  :entry\n    psuh 1\n"))
	bag := NewBag(4)
	bag.Add(NewError(SynUnknownMnemonic, source.Span{File: id, Start: 21, End: 25}, `unknown instruction "psuh"`))

	var out bytes.Buffer
	Pretty(&out, bag, fs, PrettyOpts{Context: true})
	want := "m.tka:3:5: ERROR SYN2003: unknown instruction \"psuh\"\n" +
		"      psuh 1\n" +
		"      ^~~~\n"
	if out.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestPrettyColorsSeverity(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("m.tka", []byte("push\n"))
	bag := NewBag(4)
	bag.Add(NewError(SynExpectOperand, source.Span{File: id, Start: 0, End: 4}, "missing operand"))
	bag.Add(New(SevWarning, LexBadNumber, source.Span{File: id, Start: 0, End: 1}, "odd"))

	var out bytes.Buffer
	Pretty(&out, bag, fs, PrettyOpts{Color: true})
	if !strings.Contains(out.String(), "\x1b[31;1mERROR\x1b[0m") || !strings.Contains(out.String(), "\x1b[33;1mWARNING\x1b[0m") {
		t.Fatalf("severity labels not colored: %q", out.String())
	}
}

func TestSeverityIsFailure(t *testing.T) {
	for sev, want := range map[Severity]bool{SevInfo: false, SevWarning: false, SevError: true} {
		if sev.IsFailure() != want {
			t.Errorf("%s.IsFailure() = %v", sev, !want)
		}
	}
	bag := NewBag(4)
	bag.Add(New(SevWarning, LexBadNumber, source.Span{}, "w"))
	if bag.HasErrors() {
		t.Fatalf("a warning alone must not fail the bag")
	}
}

func TestJSON(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("m.tka", []byte("fn main\n:entry\n  psuh 1\n"))
	bag := NewBag(8)
	bag.Add(NewError(SynUnknownMnemonic, source.Span{File: id, Start: 17, End: 21}, "unknown instruction").
		WithNote(source.Span{File: id, Start: 0, End: 2}, "in this function"))
	bag.Add(NewError(SynExpectOperand, source.Span{File: id, Start: 22, End: 23}, "second"))

	out := BuildOutput(bag, fs, 1)
	if out.Count != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("count = %d", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Code != "SYN2003" || d.Severity != "ERROR" || d.Location.StartLine != 3 || d.Location.StartCol != 3 {
		t.Fatalf("diagnostic = %+v", d)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location.StartLine != 1 {
		t.Fatalf("notes = %+v", d.Notes)
	}

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, 0); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"count": 2`)) || !bytes.Contains(buf.Bytes(), []byte(`"file": "m.tka"`)) {
		t.Fatalf("json:\n%s", buf.String())
	}
}
