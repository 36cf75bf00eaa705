package charkov

import (
	"bufio"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Wordlist is the filtering policy applied to a training wordlist before its
// words reach Counter.Feed. It reads one word per line, trims surrounding
// whitespace and skips lines that fail the configured checks. Its behavior
// can be customized with functional options.
type Wordlist struct {
	minLength   int
	maxLength   int
	lowercase   bool
	rejectRegex *regexp.Regexp
}

// WordlistOption is a function that configures a Wordlist.
type WordlistOption func(*Wordlist)

// WithMinLength sets the minimum word length in characters.
// Default: 3
func WithMinLength(n int) WordlistOption {
	return func(w *Wordlist) {
		w.minLength = n
	}
}

// WithMaxLength sets the maximum word length in characters. Zero disables
// the check.
// Default: 0
func WithMaxLength(n int) WordlistOption {
	return func(w *Wordlist) {
		w.maxLength = n
	}
}

// WithLowercase folds every accepted word to lower case.
// Default: false
func WithLowercase(lower bool) WordlistOption {
	return func(w *Wordlist) {
		w.lowercase = lower
	}
}

// WithRejectRegex skips every word matching re, for example `^[A-Z]` for
// proper nouns or `'` for contractions. A nil re disables the check.
// Default: nil
func WithRejectRegex(re *regexp.Regexp) WordlistOption {
	return func(w *Wordlist) {
		w.rejectRegex = re
	}
}

// NewWordlist creates a wordlist policy with default settings, which can be
// overridden by providing one or more WordlistOption functions.
func NewWordlist(opts ...WordlistOption) *Wordlist {
	w := &Wordlist{
		minLength: 3,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Accept applies the policy to a single raw line. It returns the word to
// feed and whether the line was accepted.
func (w *Wordlist) Accept(line string) (string, bool) {
	word := strings.TrimSpace(line)
	if word == "" || !utf8.ValidString(word) {
		return "", false
	}
	if w.rejectRegex != nil && w.rejectRegex.MatchString(word) {
		return "", false
	}
	if w.lowercase {
		word = strings.ToLower(word)
	}
	n := utf8.RuneCountInString(word)
	if n < w.minLength {
		return "", false
	}
	if w.maxLength > 0 && n > w.maxLength {
		return "", false
	}
	return word, true
}

// NewStream returns a WordStream reading lines from r.
func (w *Wordlist) NewStream(r io.Reader) *WordStream {
	return &WordStream{
		scanner: bufio.NewScanner(r),
		policy:  w,
	}
}

// WordStream yields accepted words from an underlying reader one at a time.
type WordStream struct {
	scanner *bufio.Scanner
	policy  *Wordlist
	skipped int
}

// Next returns the next accepted word. When the stream is exhausted it
// returns an empty string and io.EOF. Any other error comes from the
// underlying reader.
func (s *WordStream) Next() (string, error) {
	for s.scanner.Scan() {
		if word, ok := s.policy.Accept(s.scanner.Text()); ok {
			return word, nil
		}
		s.skipped++
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Skipped returns the number of lines rejected so far.
func (s *WordStream) Skipped() int { return s.skipped }
