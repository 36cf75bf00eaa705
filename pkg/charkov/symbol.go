package charkov

import "strconv"

// SymbolKind tags the variant held by a Symbol.
type SymbolKind uint8

const (
	// KindChar is a concrete character.
	KindChar SymbolKind = iota
	// KindStart is the Start-boundary sentinel that pads the beginning of a word.
	KindStart
	// KindEnd is the End-boundary sentinel that terminates a word.
	KindEnd
)

func (k SymbolKind) String() string {
	switch k {
	case KindChar:
		return "char"
	case KindStart:
		return "start"
	case KindEnd:
		return "end"
	default:
		return "SymbolKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Symbol is one element of a word as seen by the chain: either a character
// or one of the two boundary sentinels. The zero value is the character
// U+0000, so always build symbols through Char, Start or End.
type Symbol struct {
	kind SymbolKind
	char rune
}

var (
	// Start is the Start-boundary sentinel.
	Start = Symbol{kind: KindStart}
	// End is the End-boundary sentinel.
	End = Symbol{kind: KindEnd}
)

// Char returns the Symbol for the character r.
func Char(r rune) Symbol {
	return Symbol{kind: KindChar, char: r}
}

// Kind reports which variant s holds.
func (s Symbol) Kind() SymbolKind { return s.kind }

// Rune returns the character held by s and whether s is a character at all.
func (s Symbol) Rune() (rune, bool) {
	return s.char, s.kind == KindChar
}

// IsEnd reports whether s is the End-boundary sentinel.
func (s Symbol) IsEnd() bool { return s.kind == KindEnd }

// String renders boundaries as <S> and <E> and characters as themselves.
func (s Symbol) String() string {
	switch s.kind {
	case KindStart:
		return "<S>"
	case KindEnd:
		return "<E>"
	default:
		return string(s.char)
	}
}

// less orders symbols by kind first, then by code point, giving the codec
// and the JSON export a stable ordering.
func (s Symbol) less(o Symbol) bool {
	if s.kind != o.kind {
		return s.kind < o.kind
	}
	return s.char < o.char
}

// Context is the pair of the two most recently emitted symbols. The only
// ways to obtain one are StartContext and Advance, so End never appears
// inside a Context.
type Context struct {
	first  Symbol
	second Symbol
}

// StartContext returns (Start, Start), the state every walk begins in.
func StartContext() Context {
	return Context{first: Start, second: Start}
}

// Advance returns the context that follows c once next has been emitted.
func (c Context) Advance(next Symbol) Context {
	return Context{first: c.second, second: next}
}

// Symbols returns both members of the context, oldest first.
func (c Context) Symbols() (Symbol, Symbol) {
	return c.first, c.second
}

func (c Context) String() string {
	return c.first.String() + c.second.String()
}

func (c Context) less(o Context) bool {
	if c.first != o.first {
		return c.first.less(o.first)
	}
	return c.second.less(o.second)
}
