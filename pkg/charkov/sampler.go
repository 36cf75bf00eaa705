package charkov

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySampler is returned when a sampler is built with no symbols.
	ErrEmptySampler = errors.New("charkov: sampler needs at least one symbol")
	// ErrZeroWeight is returned when the weights of a sampler sum to zero.
	ErrZeroWeight = errors.New("charkov: sampler total weight is zero")
	// ErrWeightMismatch is returned when symbols and weights differ in length.
	ErrWeightMismatch = errors.New("charkov: symbols and weights differ in length")
)

// Rand is the source of randomness consumed by sampling. *rand.Rand from
// math/rand/v2 satisfies it. Implementations need not be safe for concurrent
// use; give every goroutine its own.
type Rand interface {
	// IntN returns a uniform integer in [0, n).
	IntN(n int) int
	// Uint64N returns a uniform integer in [0, n).
	Uint64N(n uint64) uint64
}

// Sampler draws symbols from a fixed discrete distribution in constant time
// using Vose's alias method. Thresholds are kept in integer units of the
// total weight, so draw probabilities are exact rather than float-rounded.
// A Sampler is immutable and safe for concurrent use.
type Sampler struct {
	symbols []Symbol
	weights []uint32
	// bucket i returns symbols[i] when a draw in [0, total) falls below
	// threshold[i], and symbols[alias[i]] otherwise.
	threshold []uint64
	alias     []int
	total     uint64
}

// NewSampler builds a sampler returning symbols[i] with probability
// weights[i] / sum(weights). Zero weights are allowed as long as the total is
// positive; such symbols are never drawn.
func NewSampler(symbols []Symbol, weights []uint32) (*Sampler, error) {
	if len(symbols) != len(weights) {
		return nil, ErrWeightMismatch
	}
	n := len(symbols)
	if n == 0 {
		return nil, ErrEmptySampler
	}

	var total uint64
	for _, w := range weights {
		total += uint64(w)
	}
	if total == 0 {
		return nil, ErrZeroWeight
	}

	s := &Sampler{
		symbols:   append([]Symbol(nil), symbols...),
		weights:   append([]uint32(nil), weights...),
		threshold: make([]uint64, n),
		alias:     make([]int, n),
		total:     total,
	}

	// Scaling every weight by n makes the mean bucket height exactly total.
	scaled := make([]uint64, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)
	for i, w := range weights {
		scaled[i] = uint64(w) * uint64(n)
		if scaled[i] < total {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		l := small[len(small)-1]
		small = small[:len(small)-1]
		g := large[len(large)-1]
		large = large[:len(large)-1]

		s.threshold[l] = scaled[l]
		s.alias[l] = g

		scaled[g] = scaled[g] + scaled[l] - total
		if scaled[g] < total {
			small = append(small, g)
		} else {
			large = append(large, g)
		}
	}
	// Integer arithmetic leaves nothing over, but any leftover bucket is full.
	for _, i := range large {
		s.threshold[i] = total
		s.alias[i] = i
	}
	for _, i := range small {
		s.threshold[i] = total
		s.alias[i] = i
	}

	return s, nil
}

// Sample draws one symbol. It consumes one bucket draw and one threshold
// draw from r regardless of the number of symbols.
func (s *Sampler) Sample(r Rand) Symbol {
	i := r.IntN(len(s.symbols))
	if r.Uint64N(s.total) < s.threshold[i] {
		return s.symbols[i]
	}
	return s.symbols[s.alias[i]]
}

// Len returns the number of registered symbols.
func (s *Sampler) Len() int { return len(s.symbols) }

// Total returns the sum of all weights.
func (s *Sampler) Total() uint64 { return s.total }

// Weight returns the weight registered for sym, or 0 when sym is unknown.
func (s *Sampler) Weight(sym Symbol) uint32 {
	var w uint32
	for i, candidate := range s.symbols {
		if candidate == sym {
			w += s.weights[i]
		}
	}
	return w
}

// Each calls fn for every registered symbol and its weight, in registration order.
func (s *Sampler) Each(fn func(sym Symbol, weight uint32)) {
	for i, sym := range s.symbols {
		fn(sym, s.weights[i])
	}
}

func (s *Sampler) String() string {
	return fmt.Sprintf("Sampler(%d symbols, total %d)", len(s.symbols), s.total)
}
