package config

import (
	"fmt"
	"time"

	"github.com/iwvelando/quote-engine/pkg/constants"
	"github.com/iwvelando/quote-engine/pkg/validation"
)

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Quotes that fail here are still attempted by the runner,
// which reports them individually.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		warnings = append(warnings, err.Error())
	}

	if _, err := c.ScheduleStart(time.Time{}); err != nil {
		warnings = append(warnings, err.Error())
	}

	switch c.RateBands.Source {
	case "", constants.RateBandSourceFile:
		if len(c.RateBands.Table) == 0 && len(c.Leases) > 0 {
			warnings = append(warnings, "Leases are configured but the rate band table is empty")
		}
		warnings = append(warnings, validation.ValidateBands(c.RateBands.Table)...)
	case constants.RateBandSourcePostgres:
		if c.RateBands.DSN == "" {
			warnings = append(warnings, "Rate band source is postgres but no dsn is set")
		}
	default:
		warnings = append(warnings, fmt.Sprintf("Unknown rate band source %q", c.RateBands.Source))
	}

	names := make(map[string]bool)
	checkName := func(kind, name string) {
		if name == "" {
			warnings = append(warnings, fmt.Sprintf("A %s has no name", kind))
			return
		}
		key := kind + "/" + name
		if names[key] {
			warnings = append(warnings, fmt.Sprintf("Duplicate %s name '%s'", kind, name))
		}
		names[key] = true
	}

	for _, l := range c.Leases {
		checkName("lease", l.Name)
		if err := validation.ValidateLeaseRequest(l.Request); err != nil {
			warnings = append(warnings, fmt.Sprintf("Lease '%s': %s", l.Name, err))
		}
	}

	for _, loan := range c.Loans {
		checkName("loan", loan.Name)
		p, err := loan.ToParameters(c.Solver)
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		if err := validation.ValidateLoanParameters(p); err != nil {
			warnings = append(warnings, fmt.Sprintf("Loan '%s': %s", loan.Name, err))
		}
	}

	return warnings
}
