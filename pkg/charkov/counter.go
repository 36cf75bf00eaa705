package charkov

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"
)

// Counter accumulates transition frequencies and the set of training words.
// It is meant for a single training pass on one goroutine and is consumed by
// Compile.
type Counter struct {
	counts map[Context]map[Symbol]uint32
	words  map[string]struct{}
	logger *slog.Logger
}

// NewCounter returns an empty Counter. Logging is discarded until SetLogger
// is called.
func NewCounter() *Counter {
	return &Counter{
		counts: make(map[Context]map[Symbol]uint32),
		words:  make(map[string]struct{}),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger used by Train. A nil logger is ignored.
func (c *Counter) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Feed records every transition of word and adds it to the known words.
// The word is padded with a leading Start (so the first context is
// (Start, Start)) and a trailing End. Empty words and words that are not
// valid UTF-8 are ignored; any other filtering is up to the caller.
func (c *Counter) Feed(word string) {
	if word == "" || !utf8.ValidString(word) {
		return
	}

	ctx := StartContext()
	for _, r := range word {
		next := Char(r)
		c.increment(ctx, next)
		ctx = ctx.Advance(next)
	}
	c.increment(ctx, End)

	c.words[word] = struct{}{}
}

// increment bumps the count of next following ctx by one.
func (c *Counter) increment(ctx Context, next Symbol) {
	m, ok := c.counts[ctx]
	if !ok {
		m = make(map[Symbol]uint32)
		c.counts[ctx] = m
	}
	m[next]++
}

// Train feeds every word accepted by wl from r and returns how many words
// were fed. A nil wl uses NewWordlist's defaults. The context is checked
// between words.
func (c *Counter) Train(ctx context.Context, r io.Reader, wl *Wordlist) (int, error) {
	if wl == nil {
		wl = NewWordlist()
	}
	stream := wl.NewStream(r)

	var fed int
	for {
		if err := ctx.Err(); err != nil {
			return fed, err
		}
		word, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fed, fmt.Errorf("wordlist error: %w", err)
		}
		c.Feed(word)
		fed++
	}

	c.logger.InfoContext(ctx, "Training completed",
		slog.Int("words_fed", fed),
		slog.Int("words_known", len(c.words)),
		slog.Int("contexts", len(c.counts)),
		slog.Int("lines_skipped", stream.Skipped()),
	)
	return fed, nil
}

// Len returns the number of distinct contexts observed so far.
func (c *Counter) Len() int { return len(c.counts) }

// Words returns the number of distinct words fed so far.
func (c *Counter) Words() int { return len(c.words) }

// Next returns a copy of the next-symbol counts recorded after ctx, or nil
// when ctx was never observed.
func (c *Counter) Next(ctx Context) map[Symbol]uint32 {
	m, ok := c.counts[ctx]
	if !ok {
		return nil
	}
	out := make(map[Symbol]uint32, len(m))
	for sym, n := range m {
		out[sym] = n
	}
	return out
}

// Known reports whether word has been fed.
func (c *Counter) Known(word string) bool {
	_, ok := c.words[word]
	return ok
}
