package config

import (
	"context"
	"fmt"

	"github.com/iwvelando/quote-engine/pkg/constants"
	"github.com/iwvelando/quote-engine/pkg/rateband"
	"go.uber.org/zap"
)

// LoadRateBands returns the band table from the configured source.
func (c *Configuration) LoadRateBands(ctx context.Context, logger *zap.Logger) ([]rateband.RateBand, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch c.RateBands.Source {
	case "", constants.RateBandSourceFile:
		return c.RateBands.Table, nil
	case constants.RateBandSourcePostgres:
		db, err := rateband.OpenPostgres(ctx, c.RateBands.DSN)
		if err != nil {
			return nil, err
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logger.Warn("failed to close rate band database",
					zap.String("op", "config.LoadRateBands"),
					zap.Error(cerr),
				)
			}
		}()

		bands, err := rateband.LoadBands(ctx, db, c.RateBands.Query)
		if err != nil {
			return nil, err
		}
		logger.Debug(fmt.Sprintf("loaded %d rate bands from postgres", len(bands)),
			zap.String("op", "config.LoadRateBands"),
		)
		return bands, nil
	default:
		return nil, fmt.Errorf("unknown rate band source %q, expected %s or %s",
			c.RateBands.Source, constants.RateBandSourceFile, constants.RateBandSourcePostgres)
	}
}
