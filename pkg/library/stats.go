package library

import (
	"context"

	"github.com/CTAG07/Fictionary/pkg/charkov"
)

// Stats holds aggregated statistics for the whole library, including the
// stats of every stored chain.
type Stats struct {
	Fictionaries []Info                        `json:"fictionaries"` // Every stored fictionary, sorted by name
	Chains       map[string]charkov.ChainStats `json:"chains"`       // A mapping of fictionary names to their chain stats
	TotalWords   int                           `json:"total_words"`  // The number of training words across all fictionaries
	TotalBytes   int64                         `json:"total_bytes"`  // The combined size of all encoded chains
}

// GetStats returns a snapshot of statistics for the entire library. Every
// chain is decoded, so a damaged row makes the whole call fail.
func (l *Library) GetStats(ctx context.Context) (*Stats, error) {
	infos, err := l.Infos(ctx)
	if err != nil {
		return nil, err
	}

	var totalBytes int64
	if err = l.stmtTotalSize.QueryRowContext(ctx).Scan(&totalBytes); err != nil {
		return nil, err
	}

	stats := &Stats{
		Fictionaries: infos,
		Chains:       make(map[string]charkov.ChainStats, len(infos)),
		TotalBytes:   totalBytes,
	}
	for _, info := range infos {
		ch, err := l.Load(ctx, info.Name)
		if err != nil {
			return nil, err
		}
		cs := ch.Stats()
		stats.Chains[info.Name] = cs
		stats.TotalWords += cs.Words
	}
	return stats, nil
}
