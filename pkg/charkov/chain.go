package charkov

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultMaxAttempts is the number of candidates Word tries before giving up.
const DefaultMaxAttempts = 1000

const (
	// MinWordLength is the smallest minimum length accepted by ValidateLengths.
	MinWordLength = 3
	// MinMaxWordLength is the smallest maximum length accepted by ValidateLengths.
	MinMaxWordLength = 5
)

var (
	// ErrInvalidChain is returned when a walk reaches a context that has no
	// sampler, meaning the chain is inconsistent or corrupted.
	ErrInvalidChain = errors.New("charkov: inconsistency in markov chain data")
	// ErrIterationsExceeded matches every *IterationsExceededError.
	ErrIterationsExceeded = errors.New("charkov: exceeded maximum number of iterations")
	// ErrInvalidLength is returned by ValidateLengths.
	ErrInvalidLength = errors.New("charkov: invalid word length bounds")
)

// IterationsExceededError is returned by Word when no acceptable candidate
// was produced within the attempt budget. Relaxing the length bounds or
// training on more words usually helps.
type IterationsExceededError struct {
	Attempts int
}

func (e *IterationsExceededError) Error() string {
	return fmt.Sprintf("charkov: exceeded maximum number of iterations (which is %d)", e.Attempts)
}

// Is lets errors.Is match the ErrIterationsExceeded sentinel.
func (e *IterationsExceededError) Is(target error) bool {
	return target == ErrIterationsExceeded
}

// Chain is a compiled character-level Markov chain. It maps every observed
// context to a sampler over the symbols that followed it, and remembers the
// training words so they are never produced again. A Chain is immutable and
// safe for concurrent use as long as every goroutine passes its own Rand.
type Chain struct {
	samplers map[Context]*Sampler
	words    map[string]struct{}
}

// Compile builds a Chain from c. The counter's tables are handed over to the
// chain and c is left empty.
func Compile(c *Counter) (*Chain, error) {
	chain := &Chain{
		samplers: make(map[Context]*Sampler, len(c.counts)),
		words:    c.words,
	}
	for ctx, next := range c.counts {
		s, err := samplerFromCounts(next)
		if err != nil {
			return nil, fmt.Errorf("context %q: %w", ctx.String(), err)
		}
		chain.samplers[ctx] = s
	}

	c.counts = make(map[Context]map[Symbol]uint32)
	c.words = make(map[string]struct{})
	return chain, nil
}

// samplerFromCounts registers symbols in sorted order so equal tables always
// give identical samplers.
func samplerFromCounts(counts map[Symbol]uint32) (*Sampler, error) {
	symbols := make([]Symbol, 0, len(counts))
	for sym := range counts {
		symbols = append(symbols, sym)
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i].less(symbols[j]) })

	weights := make([]uint32, len(symbols))
	for i, sym := range symbols {
		weights[i] = counts[sym]
	}
	return NewSampler(symbols, weights)
}

// Candidate walks the chain once from (Start, Start) until End is drawn and
// returns the characters emitted on the way. It imposes no length bound.
func (ch *Chain) Candidate(r Rand) (string, error) {
	var builder strings.Builder
	ctx := StartContext()
	for {
		s, ok := ch.samplers[ctx]
		if !ok {
			return "", ErrInvalidChain
		}
		next := s.Sample(r)
		if next.IsEnd() {
			return builder.String(), nil
		}
		if c, isChar := next.Rune(); isChar {
			builder.WriteRune(c)
		}
		ctx = ctx.Advance(next)
	}
}

// wordOptions configures Word.
type wordOptions struct {
	maxAttempts int
}

// WordOption configures a call to Word.
type WordOption func(*wordOptions)

// WithMaxAttempts sets how many candidates Word may generate before it fails
// with an *IterationsExceededError. Values below one are treated as one.
func WithMaxAttempts(n int) WordOption {
	return func(o *wordOptions) { o.maxAttempts = n }
}

// Word returns a new word whose length in characters lies in
// [minLength, maxLength] and which is not one of the training words.
// The bounds are assumed to have passed ValidateLengths.
//
// An ErrInvalidChain from a walk is returned immediately: the same chain
// would fail the same way on every retry.
func (ch *Chain) Word(r Rand, minLength, maxLength int, opts ...WordOption) (string, error) {
	options := &wordOptions{maxAttempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(options)
	}
	if options.maxAttempts < 1 {
		options.maxAttempts = 1
	}

	for i := 0; i < options.maxAttempts; i++ {
		candidate, err := ch.Candidate(r)
		if err != nil {
			return "", err
		}
		n := utf8.RuneCountInString(candidate)
		if n < minLength || n > maxLength {
			continue
		}
		if _, known := ch.words[candidate]; known {
			continue
		}
		return candidate, nil
	}
	return "", &IterationsExceededError{Attempts: options.maxAttempts}
}

// ValidateLengths checks the bounds callers must satisfy before calling Word.
func ValidateLengths(minLength, maxLength int) error {
	if minLength < MinWordLength {
		return fmt.Errorf("%w: minimum length must be at least %d", ErrInvalidLength, MinWordLength)
	}
	if maxLength < MinMaxWordLength {
		return fmt.Errorf("%w: maximum length must be at least %d", ErrInvalidLength, MinMaxWordLength)
	}
	if minLength > maxLength {
		return fmt.Errorf("%w: minimum length cannot be bigger than maximum length", ErrInvalidLength)
	}
	return nil
}

// Contains reports whether word was part of the training data.
func (ch *Chain) Contains(word string) bool {
	_, ok := ch.words[word]
	return ok
}

// Len returns the number of contexts with a sampler.
func (ch *Chain) Len() int { return len(ch.samplers) }

// Sampler returns the sampler for ctx, if any.
func (ch *Chain) Sampler(ctx Context) (*Sampler, bool) {
	s, ok := ch.samplers[ctx]
	return s, ok
}

// Validate checks that every context a walk can reach has a sampler. Chains
// built by Compile always pass; Decode uses it to reject damaged input. A
// chain compiled from an empty Counter has no contexts at all and is valid,
// although every walk on it fails.
func (ch *Chain) Validate() error {
	if len(ch.samplers) == 0 {
		return nil
	}
	if _, ok := ch.samplers[StartContext()]; !ok {
		return fmt.Errorf("%w: no sampler for the start context", ErrInvalidChain)
	}
	for ctx, s := range ch.samplers {
		for _, sym := range s.symbols {
			if sym.IsEnd() {
				continue
			}
			if sym.kind == KindStart {
				return fmt.Errorf("%w: context %q can emit a start boundary", ErrInvalidChain, ctx.String())
			}
			next := ctx.Advance(sym)
			if _, ok := ch.samplers[next]; !ok {
				return fmt.Errorf("%w: context %q leads to unknown context %q", ErrInvalidChain, ctx.String(), next.String())
			}
		}
	}
	return nil
}

// Equal reports whether ch and other have the same contexts, the same
// weights for every context and the same training words.
func (ch *Chain) Equal(other *Chain) bool {
	if len(ch.samplers) != len(other.samplers) || len(ch.words) != len(other.words) {
		return false
	}
	for w := range ch.words {
		if _, ok := other.words[w]; !ok {
			return false
		}
	}
	for ctx, s := range ch.samplers {
		o, ok := other.samplers[ctx]
		if !ok || s.total != o.total || len(s.symbols) != len(o.symbols) {
			return false
		}
		for i, sym := range s.symbols {
			if o.Weight(sym) != s.weights[i] {
				return false
			}
		}
	}
	return true
}

// sortedContexts returns every context of ch in a stable order.
func (ch *Chain) sortedContexts() []Context {
	contexts := make([]Context, 0, len(ch.samplers))
	for ctx := range ch.samplers {
		contexts = append(contexts, ctx)
	}
	sort.Slice(contexts, func(i, j int) bool { return contexts[i].less(contexts[j]) })
	return contexts
}

// sortedWords returns the training words in lexical order.
func (ch *Chain) sortedWords() []string {
	words := make([]string, 0, len(ch.words))
	for w := range ch.words {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}
