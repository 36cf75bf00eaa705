package charkov

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"testing"
)

func ctxOf(a, b Symbol) Context { return Context{first: a, second: b} }

func TestFeed(t *testing.T) {
	c := NewCounter()

	c.Feed("a")
	if got := c.Next(StartContext()); !reflect.DeepEqual(got, map[Symbol]uint32{Char('a'): 1}) {
		t.Errorf("after 'a': (S,S) -> %v", got)
	}
	if got := c.Next(ctxOf(Start, Char('a'))); !reflect.DeepEqual(got, map[Symbol]uint32{End: 1}) {
		t.Errorf("after 'a': (S,a) -> %v", got)
	}

	c.Feed("ab")
	if got := c.Next(StartContext()); !reflect.DeepEqual(got, map[Symbol]uint32{Char('a'): 2}) {
		t.Errorf("after 'ab': (S,S) -> %v", got)
	}
	if got := c.Next(ctxOf(Start, Char('a'))); !reflect.DeepEqual(got, map[Symbol]uint32{End: 1, Char('b'): 1}) {
		t.Errorf("after 'ab': (S,a) -> %v", got)
	}
	if got := c.Next(ctxOf(Char('a'), Char('b'))); !reflect.DeepEqual(got, map[Symbol]uint32{End: 1}) {
		t.Errorf("after 'ab': (a,b) -> %v", got)
	}

	c.Feed("abc")
	if got := c.Next(StartContext()); !reflect.DeepEqual(got, map[Symbol]uint32{Char('a'): 3}) {
		t.Errorf("after 'abc': (S,S) -> %v", got)
	}
	if got := c.Next(ctxOf(Start, Char('a'))); !reflect.DeepEqual(got, map[Symbol]uint32{Char('b'): 2, End: 1}) {
		t.Errorf("after 'abc': (S,a) -> %v", got)
	}
	if got := c.Next(ctxOf(Char('a'), Char('b'))); !reflect.DeepEqual(got, map[Symbol]uint32{End: 1, Char('c'): 1}) {
		t.Errorf("after 'abc': (a,b) -> %v", got)
	}
	if got := c.Next(ctxOf(Char('b'), Char('c'))); !reflect.DeepEqual(got, map[Symbol]uint32{End: 1}) {
		t.Errorf("after 'abc': (b,c) -> %v", got)
	}

	if c.Words() != 3 || !c.Known("ab") {
		t.Errorf("expected 3 known words including 'ab', got %d", c.Words())
	}
	if c.Next(ctxOf(Char('z'), Char('z'))) != nil {
		t.Error("expected nil for an unobserved context")
	}
}

func TestFeedIgnoresEmptyWord(t *testing.T) {
	c := NewCounter()
	c.Feed("")
	if c.Len() != 0 || c.Words() != 0 {
		t.Errorf("expected empty counter, got %d contexts and %d words", c.Len(), c.Words())
	}
}

func TestFeedIgnoresInvalidUTF8(t *testing.T) {
	c := NewCounter()
	c.Feed("ab\xffc")
	if c.Len() != 0 || c.Words() != 0 || c.Known("ab\xffc") {
		t.Errorf("expected empty counter, got %d contexts and %d words", c.Len(), c.Words())
	}
}

func TestFeedRepeatedWordCountsTwice(t *testing.T) {
	c := NewCounter()
	c.Feed("abc")
	c.Feed("abc")
	if got := c.Next(StartContext())[Char('a')]; got != 2 {
		t.Errorf("expected count 2, got %d", got)
	}
	if c.Words() != 1 {
		t.Errorf("expected 1 distinct word, got %d", c.Words())
	}
}

func TestFeedOrderIndependent(t *testing.T) {
	words := []string{"babel", "table", "cable", "tablet", "abacus", "table"}

	forward := NewCounter()
	for _, w := range words {
		forward.Feed(w)
	}
	backward := NewCounter()
	for i := len(words) - 1; i >= 0; i-- {
		backward.Feed(words[i])
	}

	if !reflect.DeepEqual(forward.counts, backward.counts) {
		t.Error("frequency tables differ with feed order")
	}
	if !reflect.DeepEqual(forward.words, backward.words) {
		t.Error("word sets differ with feed order")
	}
}

func TestFeedTotalWeightPositive(t *testing.T) {
	c := NewCounter()
	for _, w := range []string{"aardvark", "zebra", "über", "naïve", "x"} {
		c.Feed(w)
	}
	for ctx, next := range c.counts {
		var total uint64
		for _, n := range next {
			total += uint64(n)
		}
		if total == 0 {
			t.Errorf("context %v has zero total weight", ctx)
		}
	}
}

func TestFeedUnicode(t *testing.T) {
	c := NewCounter()
	c.Feed("café")
	if got := c.Next(ctxOf(Char('f'), Char('é'))); !reflect.DeepEqual(got, map[Symbol]uint32{End: 1}) {
		t.Errorf("expected (f,é) -> End, got %v", got)
	}
}

func TestTrain(t *testing.T) {
	c := NewCounter()
	data := "apple\n  banana  \nab\nCherry\n\ndon't\n"
	wl := NewWordlist(WithRejectRegex(regexp.MustCompile(`^[A-Z]|'`)))

	fed, err := c.Train(context.Background(), strings.NewReader(data), wl)
	if err != nil {
		t.Fatalf("Train() failed: %v", err)
	}
	if fed != 2 {
		t.Errorf("expected 2 words fed, got %d", fed)
	}
	if !c.Known("banana") || c.Known("ab") || c.Known("Cherry") || c.Known("don't") {
		t.Error("training did not apply the wordlist policy")
	}
}

func TestTrainDefaultWordlist(t *testing.T) {
	c := NewCounter()
	fed, err := c.Train(context.Background(), strings.NewReader("ok\nyes\n"), nil)
	if err != nil {
		t.Fatalf("Train() failed: %v", err)
	}
	if fed != 1 || !c.Known("yes") {
		t.Errorf("expected only 'yes' to be fed, got %d words", fed)
	}
}

func TestTrainCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCounter()
	_, err := c.Train(ctx, strings.NewReader("alpha\nbeta\n"), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func BenchmarkTrain(b *testing.B) {
	words := createBenchmarkWords()
	data := strings.Join(words, "\n")
	ctx := context.Background()

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := NewCounter()
		if _, err := c.Train(ctx, strings.NewReader(data), nil); err != nil {
			b.Fatalf("Train() failed: %v", err)
		}
	}
}
