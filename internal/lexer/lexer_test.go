package lexer

import (
	"testing"

	"tukun/internal/diag"
	"tukun/internal/source"
	"tukun/internal/token"
)

func lex(t *testing.T, src string) ([]token.Token, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	f := fs.Get(fs.AddVirtual("t.tka", []byte(src)))
	bag := diag.NewBag(16)
	return New(f, Options{Reporter: diag.BagReporter{Bag: bag}}).All(), bag
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tk := range toks {
		out[i] = tk.Kind
	}
	return out
}

func sameKinds(a, b []token.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestModuleHeader(t *testing.T) {
	toks, bag := lex(t, `@modname "com.tukunc.testmodule" # name the module
%const "five" = 5
%const "fp" = 1.25
%typedef "arrt" = array(3,"integer")
`)
	if bag.Len() != 0 {
		t.Fatalf("diagnostics: %v", bag.Items())
	}
	want := []token.Kind{
		token.At, token.Ident, token.StringLit,
		token.Percent, token.Ident, token.StringLit, token.Assign, token.IntLit,
		token.Percent, token.Ident, token.StringLit, token.Assign, token.FloatLit,
		token.Percent, token.Ident, token.StringLit, token.Assign, token.Ident,
		token.LParen, token.IntLit, token.Comma, token.StringLit, token.RParen,
		token.EOF,
	}
	if got := kinds(toks); !sameKinds(got, want) {
		t.Fatalf("kinds:\n%v\nwant:\n%v", got, want)
	}
	if toks[1].Text != "modname" || toks[2].Text != `"com.tukunc.testmodule"` {
		t.Fatalf("texts %q %q", toks[1].Text, toks[2].Text)
	}
}

func TestBodyAndComments(t *testing.T) {
	toks, _ := lex(t, "fn main # a function\n  :entry\n    # ret\n    equal not\n    jump :do\n")
	var texts []string
	for _, tk := range toks[:len(toks)-1] {
		texts = append(texts, tk.Text)
	}
	want := []string{"fn", "main", ":", "entry", "equal", "not", "jump", ":", "do"}
	if len(texts) != len(want) {
		t.Fatalf("got %q", texts)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Fatalf("got %q, want %q", texts, want)
		}
	}
}

func TestSpans(t *testing.T) {
	toks, _ := lex(t, "  push 12")
	if toks[0].Span.Start != 2 || toks[0].Span.End != 6 {
		t.Fatalf("push span %v", toks[0].Span)
	}
	if toks[1].Span.Start != 7 || toks[1].Span.End != 9 {
		t.Fatalf("literal span %v", toks[1].Span)
	}
}

func TestNumbers(t *testing.T) {
	cases := []struct {
		src  string
		kind token.Kind
	}{
		{"18446744073709551613", token.IntLit},
		{"1.25", token.FloatLit},
		{"-0.5", token.FloatLit},
		{"2e10", token.FloatLit},
		{"1.5E-3", token.FloatLit},
		{"12abc", token.Invalid},
		{"3e", token.Invalid},
	}
	for _, tc := range cases {
		toks, _ := lex(t, tc.src)
		if toks[0].Kind != tc.kind || (tc.kind != token.Invalid && toks[0].Text != tc.src) {
			t.Errorf("%s: %v %q", tc.src, toks[0].Kind, toks[0].Text)
		}
	}
}

func TestStringErrors(t *testing.T) {
	_, bag := lex(t, "\"open\nret")
	if d, ok := bag.FirstError(); !ok || d.Code != diag.LexUnterminatedString {
		t.Fatalf("got %v", bag.Items())
	}
	_, bag = lex(t, `"bad \q escape"`)
	if d, ok := bag.FirstError(); !ok || d.Code != diag.LexBadEscape {
		t.Fatalf("got %v", bag.Items())
	}
	_, bag = lex(t, "push $")
	if d, ok := bag.FirstError(); !ok || d.Code != diag.LexUnknownChar || d.Primary.Start != 5 {
		t.Fatalf("got %v", bag.Items())
	}
}

func TestUnquote(t *testing.T) {
	cases := map[string]string{
		`"hello world"`:  "hello world",
		`"say \"hi\""`:   `say "hi"`,
		`"a\\b\n"`:       "a\\b\n",
		"\"cafe\u0301\"": "caf\u00e9",
	}
	for in, want := range cases {
		got, err := Unquote(in)
		if err != nil || got != want {
			t.Errorf("Unquote(%s) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := Unquote(`"trailing\"`); err == nil {
		t.Errorf("dangling escape accepted")
	}
}

func TestPeek(t *testing.T) {
	fs := source.NewFileSet()
	lx := New(fs.Get(fs.AddVirtual("p", []byte("ret nop"))), Options{})
	if lx.Peek().Text != "ret" || lx.Next().Text != "ret" || lx.Next().Text != "nop" {
		t.Fatalf("peek/next disagree")
	}
	if lx.Next().Kind != token.EOF || lx.Next().Kind != token.EOF {
		t.Fatalf("EOF is not sticky")
	}
}
