package token

// Kind is the category of a token.
type Kind uint8

const (
	Invalid Kind = iota
	EOF

	Ident     // push, fn, modname, entry, ...
	IntLit    // 42
	FloatLit  // 1.25
	StringLit // "text", quotes and escapes kept

	At      // @
	Percent // %
	Colon   // :
	Assign  // =
	Comma   // ,
	LParen  // (
	RParen  // )
)

var kindNames = [...]string{
	Invalid:   "invalid",
	EOF:       "end of file",
	Ident:     "identifier",
	IntLit:    "integer literal",
	FloatLit:  "float literal",
	StringLit: "string literal",
	At:        "'@'",
	Percent:   "'%'",
	Colon:     "':'",
	Assign:    "'='",
	Comma:     "','",
	LParen:    "'('",
	RParen:    "')'",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// punct maps single-byte punctuation to its kind.
var punct = map[byte]Kind{
	'@': At,
	'%': Percent,
	':': Colon,
	'=': Assign,
	',': Comma,
	'(': LParen,
	')': RParen,
}

// LookupPunct classifies a punctuation byte.
func LookupPunct(b byte) (Kind, bool) {
	k, ok := punct[b]
	return k, ok
}
