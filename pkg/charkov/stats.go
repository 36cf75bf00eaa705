package charkov

// ChainStats holds aggregated statistics for a compiled chain.
type ChainStats struct {
	Contexts       int    `json:"contexts"`        // The number of distinct contexts with a sampler.
	Transitions    int    `json:"transitions"`     // The number of unique context->next symbol links.
	TotalFrequency uint64 `json:"total_frequency"` // The sum of all link weights; the number of trained transitions.
	StartingChars  int    `json:"starting_chars"`  // The number of distinct characters that can begin a word.
	Alphabet       int    `json:"alphabet"`        // The number of distinct characters the chain can emit.
	Words          int    `json:"words"`           // The number of training words.
}

// Stats returns a snapshot of statistics for ch.
func (ch *Chain) Stats() ChainStats {
	stats := ChainStats{
		Contexts: len(ch.samplers),
		Words:    len(ch.words),
	}
	alphabet := make(map[rune]struct{})
	for ctx, s := range ch.samplers {
		stats.Transitions += len(s.symbols)
		stats.TotalFrequency += s.total
		for _, sym := range s.symbols {
			if r, ok := sym.Rune(); ok {
				alphabet[r] = struct{}{}
			}
		}
		if ctx == StartContext() {
			for i, sym := range s.symbols {
				if sym.kind == KindChar && s.weights[i] > 0 {
					stats.StartingChars++
				}
			}
		}
	}
	stats.Alphabet = len(alphabet)
	return stats
}
