package charkov

import (
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"
)

// ExportedChain is the JSON representation of a Chain, used for inspection
// and for moving chains between tools. Boundaries are written as "<S>" and
// "<E>"; every other symbol is a single character.
type ExportedChain struct {
	Contexts []ExportedContext `json:"contexts"`
	Words    []string          `json:"words"`
}

// ExportedContext is a single context and the symbols that followed it.
type ExportedContext struct {
	Context [2]string      `json:"context"`
	Next    []ExportedNext `json:"next"`
}

// ExportedNext is one weighted next symbol within an ExportedContext.
type ExportedNext struct {
	Symbol string `json:"symbol"`
	Weight uint32 `json:"weight"`
}

// Export returns the serializable form of ch with contexts, symbols and
// words in a stable order.
func (ch *Chain) Export() ExportedChain {
	contexts := ch.sortedContexts()
	exported := ExportedChain{
		Contexts: make([]ExportedContext, 0, len(contexts)),
		Words:    ch.sortedWords(),
	}
	for _, ctx := range contexts {
		entries := ch.samplers[ctx].sortedEntries()
		ec := ExportedContext{
			Context: [2]string{ctx.first.String(), ctx.second.String()},
			Next:    make([]ExportedNext, len(entries)),
		}
		for i, e := range entries {
			ec.Next[i] = ExportedNext{Symbol: e.symbol.String(), Weight: e.weight}
		}
		exported.Contexts = append(exported.Contexts, ec)
	}
	return exported
}

// ExportJSON writes ch to w as indented JSON.
func (ch *Chain) ExportJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ch.Export())
}

// ImportJSON reads a chain written by ExportJSON. The result is checked with
// Validate exactly like a decoded binary chain.
func ImportJSON(r io.Reader) (*Chain, error) {
	var imported ExportedChain
	if err := json.NewDecoder(r).Decode(&imported); err != nil {
		return nil, fmt.Errorf("failed to decode json chain: %w", err)
	}
	return imported.Chain()
}

// Chain rebuilds a Chain from its exported form.
func (e ExportedChain) Chain() (*Chain, error) {
	ch := &Chain{
		samplers: make(map[Context]*Sampler, len(e.Contexts)),
		words:    make(map[string]struct{}, len(e.Words)),
	}

	for _, ec := range e.Contexts {
		first, err := parseSymbol(ec.Context[0])
		if err != nil {
			return nil, err
		}
		second, err := parseSymbol(ec.Context[1])
		if err != nil {
			return nil, err
		}
		if first.IsEnd() || second.IsEnd() || (second.kind == KindStart && first.kind != KindStart) {
			return nil, fmt.Errorf("%w: impossible context %q%q", ErrMalformed, ec.Context[0], ec.Context[1])
		}
		ctx := Context{first: first, second: second}
		if _, dup := ch.samplers[ctx]; dup {
			return nil, fmt.Errorf("%w: duplicate context %q", ErrMalformed, ctx.String())
		}

		counts := make(map[Symbol]uint32, len(ec.Next))
		for _, next := range ec.Next {
			sym, err := parseSymbol(next.Symbol)
			if err != nil {
				return nil, err
			}
			if sym.kind == KindStart {
				return nil, fmt.Errorf("%w: start boundary as a next symbol", ErrMalformed)
			}
			if _, dup := counts[sym]; dup {
				return nil, fmt.Errorf("%w: duplicate symbol %q in context %q", ErrMalformed, next.Symbol, ctx.String())
			}
			counts[sym] = next.Weight
		}
		if len(counts) == 0 {
			return nil, fmt.Errorf("%w: context %q has no next symbols", ErrMalformed, ctx.String())
		}
		s, err := samplerFromCounts(counts)
		if err != nil {
			return nil, fmt.Errorf("%w: context %q: %w", ErrMalformed, ctx.String(), err)
		}
		ch.samplers[ctx] = s
	}

	for _, w := range e.Words {
		if w == "" || !utf8.ValidString(w) {
			return nil, fmt.Errorf("%w: invalid training word %q", ErrMalformed, w)
		}
		ch.words[w] = struct{}{}
	}

	if err := ch.Validate(); err != nil {
		return nil, err
	}
	return ch, nil
}

func parseSymbol(s string) (Symbol, error) {
	switch s {
	case "<S>":
		return Start, nil
	case "<E>":
		return End, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || (r == utf8.RuneError && size <= 1) {
		return Symbol{}, fmt.Errorf("%w: invalid symbol %q", ErrMalformed, s)
	}
	return Char(r), nil
}
