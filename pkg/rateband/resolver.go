package rateband

import (
	"go.uber.org/zap"
)

// Resolver looks up a single band from a static table. It never mutates the
// table and is safe for concurrent use.
type Resolver struct {
	logger *zap.Logger
	bands  []RateBand
}

// NewResolver creates a resolver over bands. The slice is copied.
func NewResolver(logger *zap.Logger, bands []RateBand) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	table := make([]RateBand, len(bands))
	copy(table, bands)
	return &Resolver{logger: logger, bands: table}
}

// Len returns the number of bands in the table.
func (r *Resolver) Len() int {
	return len(r.bands)
}

// Candidates returns the bands agreeing with every exact-match field of c,
// in table order, ignoring the capacity and productivity ranges.
func (r *Resolver) Candidates(c Criteria) []RateBand {
	var candidates []RateBand
	for _, band := range r.bands {
		if band.MatchesExact(c) {
			candidates = append(candidates, band)
		}
	}
	return candidates
}

// Resolve returns the first band matching c. Overlapping bands are resolved
// in table order and logged as ambiguous.
func (r *Resolver) Resolve(c Criteria) (RateBand, error) {
	var (
		match   RateBand
		matches int
	)
	for _, band := range r.bands {
		if !band.Matches(c) {
			continue
		}
		if matches == 0 {
			match = band
		}
		matches++
	}

	if matches == 0 {
		r.logger.Debug("no rate band matched",
			zap.String("op", "rateband.Resolve"),
			zap.Any("criteria", c),
			zap.Int("tableSize", len(r.bands)),
		)
		return RateBand{}, &ConfigurationNotFoundError{Criteria: c}
	}

	if matches > 1 {
		r.logger.Warn("multiple rate bands matched, using first in table order",
			zap.String("op", "rateband.Resolve"),
			zap.Any("criteria", c),
			zap.Int("matches", matches),
		)
	}

	return match, nil
}
