package token

import "testing"

func TestLookupPunct(t *testing.T) {
	for b, want := range map[byte]Kind{'@': At, '%': Percent, ':': Colon, '=': Assign, ',': Comma, '(': LParen, ')': RParen} {
		if k, ok := LookupPunct(b); !ok || k != want {
			t.Errorf("%q: %v %v", b, k, ok)
		}
	}
	if _, ok := LookupPunct('$'); ok {
		t.Errorf("'$' is not punctuation")
	}
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		tok  Token
		want string
	}{
		{Token{Kind: Ident, Text: "push"}, "'push'"},
		{Token{Kind: IntLit, Text: "42"}, "integer literal 42"},
		{Token{Kind: StringLit, Text: `"x"`}, `string literal "x"`},
		{Token{Kind: Colon, Text: ":"}, "':'"},
		{Token{Kind: EOF}, "end of file"},
	}
	for _, tc := range cases {
		if got := tc.tok.Describe(); got != tc.want {
			t.Errorf("%v: %q, want %q", tc.tok, got, tc.want)
		}
	}
}
