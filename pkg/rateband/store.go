package rateband

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the "postgres" driver for OpenPostgres.
	_ "github.com/lib/pq"
)

// DefaultQuery selects the band table in the column order scanBands expects.
const DefaultQuery = `SELECT is_solar, is_retrofit, utility_program_name, contract_term_years,
	storage_size_kwh, rate_escalator_percent, solar_size_min, solar_size_max,
	productivity_min, productivity_max, adjusted_install_cost_per_kw, rate_factor,
	rate_per_kwh, storage_payment
FROM lease_rate_bands
ORDER BY id`

// rows is the subset of *sql.Rows used while scanning.
type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// OpenPostgres opens and pings a Postgres connection.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open rate band database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach rate band database: %w", err)
	}
	return db, nil
}

// LoadBands reads the band table. An empty query uses DefaultQuery.
func LoadBands(ctx context.Context, db *sql.DB, query string) ([]RateBand, error) {
	if query == "" {
		query = DefaultQuery
	}
	result, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate bands: %w", err)
	}
	return scanBands(result)
}

func scanBands(r rows) ([]RateBand, error) {
	defer func() {
		_ = r.Close()
	}()

	var bands []RateBand
	for r.Next() {
		var b RateBand
		if err := r.Scan(
			&b.IsSolar,
			&b.IsRetrofit,
			&b.UtilityProgramName,
			&b.ContractTermYears,
			&b.StorageSizeKWh,
			&b.RateEscalatorPercent,
			&b.SolarSizeMin,
			&b.SolarSizeMax,
			&b.ProductivityMin,
			&b.ProductivityMax,
			&b.AdjustedInstallCostPerKw,
			&b.RateFactor,
			&b.RatePerKWh,
			&b.StoragePayment,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rate band row %d: %w", len(bands)+1, err)
		}
		bands = append(bands, b)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rate bands: %w", err)
	}
	return bands, nil
}
