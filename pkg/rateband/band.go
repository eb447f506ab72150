// Package rateband resolves lease pricing tiers from a table of discrete
// eligibility bands.
package rateband

import (
	"errors"
	"fmt"
)

// ErrConfigurationNotFound is matched by every ConfigurationNotFoundError.
var ErrConfigurationNotFound = errors.New("no rate band configuration found")

// RateBand identifies a pricing tier. Capacity and productivity ranges are
// half-open: [min, max).
type RateBand struct {
	IsSolar                  bool    `json:"isSolar" yaml:"isSolar" mapstructure:"isSolar"`
	IsRetrofit               bool    `json:"isRetrofit" yaml:"isRetrofit" mapstructure:"isRetrofit"`
	UtilityProgramName       string  `json:"utilityProgramName" yaml:"utilityProgramName" mapstructure:"utilityProgramName"`
	ContractTermYears        int     `json:"contractTermYears" yaml:"contractTermYears" mapstructure:"contractTermYears"`
	StorageSizeKWh           float64 `json:"storageSizeKWh" yaml:"storageSizeKWh" mapstructure:"storageSizeKWh"`
	RateEscalatorPercent     float64 `json:"rateEscalatorPercent" yaml:"rateEscalatorPercent" mapstructure:"rateEscalatorPercent"`
	SolarSizeMin             float64 `json:"solarSizeMin" yaml:"solarSizeMin" mapstructure:"solarSizeMin"`
	SolarSizeMax             float64 `json:"solarSizeMax" yaml:"solarSizeMax" mapstructure:"solarSizeMax"`
	ProductivityMin          float64 `json:"productivityMin" yaml:"productivityMin" mapstructure:"productivityMin"`
	ProductivityMax          float64 `json:"productivityMax" yaml:"productivityMax" mapstructure:"productivityMax"`
	AdjustedInstallCostPerKw float64 `json:"adjustedInstallCostPerKw" yaml:"adjustedInstallCostPerKw" mapstructure:"adjustedInstallCostPerKw"`
	RateFactor               float64 `json:"rateFactor" yaml:"rateFactor" mapstructure:"rateFactor"`
	RatePerKWh               float64 `json:"ratePerKWh" yaml:"ratePerKWh" mapstructure:"ratePerKWh"`
	StoragePayment           float64 `json:"storagePayment" yaml:"storagePayment" mapstructure:"storagePayment"`
}

// Criteria are the deal characteristics a band must satisfy.
type Criteria struct {
	IsSolar              bool    `json:"isSolar"`
	IsRetrofit           bool    `json:"isRetrofit"`
	UtilityProgramName   string  `json:"utilityProgramName"`
	ContractTermYears    int     `json:"contractTermYears"`
	StorageSizeKWh       float64 `json:"storageSizeKWh"`
	RateEscalatorPercent float64 `json:"rateEscalatorPercent"`
	CapacityKW           float64 `json:"capacityKW"`
	Productivity         float64 `json:"productivity"`
}

// ExactCriteria returns criteria carrying the band's exact-match fields, with
// zero capacity and productivity.
func (b RateBand) ExactCriteria() Criteria {
	return Criteria{
		IsSolar:              b.IsSolar,
		IsRetrofit:           b.IsRetrofit,
		UtilityProgramName:   b.UtilityProgramName,
		ContractTermYears:    b.ContractTermYears,
		StorageSizeKWh:       b.StorageSizeKWh,
		RateEscalatorPercent: b.RateEscalatorPercent,
	}
}

// MatchesExact reports whether the band agrees with every exact-match field.
func (b RateBand) MatchesExact(c Criteria) bool {
	return b.IsSolar == c.IsSolar &&
		b.IsRetrofit == c.IsRetrofit &&
		b.UtilityProgramName == c.UtilityProgramName &&
		b.ContractTermYears == c.ContractTermYears &&
		b.StorageSizeKWh == c.StorageSizeKWh &&
		b.RateEscalatorPercent == c.RateEscalatorPercent
}

// ContainsCapacity reports whether capacityKW falls in [SolarSizeMin, SolarSizeMax).
func (b RateBand) ContainsCapacity(capacityKW float64) bool {
	return capacityKW >= b.SolarSizeMin && capacityKW < b.SolarSizeMax
}

// ContainsProductivity reports whether productivity falls in
// [ProductivityMin, ProductivityMax).
func (b RateBand) ContainsProductivity(productivity float64) bool {
	return productivity >= b.ProductivityMin && productivity < b.ProductivityMax
}

// Matches reports whether the band satisfies all exact and range predicates.
func (b RateBand) Matches(c Criteria) bool {
	return b.MatchesExact(c) && b.ContainsCapacity(c.CapacityKW) && b.ContainsProductivity(c.Productivity)
}

// ConfigurationNotFoundError is returned when no band matches. It carries the
// criteria so callers can log what was asked for.
type ConfigurationNotFoundError struct {
	Criteria Criteria
}

func (e *ConfigurationNotFoundError) Error() string {
	c := e.Criteria
	return fmt.Sprintf("%s: solar=%t retrofit=%t program=%q term=%dy storage=%.2fkWh escalator=%.2f%% capacity=%.3fkW productivity=%.1f",
		ErrConfigurationNotFound, c.IsSolar, c.IsRetrofit, c.UtilityProgramName, c.ContractTermYears,
		c.StorageSizeKWh, c.RateEscalatorPercent, c.CapacityKW, c.Productivity)
}

// Is lets errors.Is match ErrConfigurationNotFound.
func (e *ConfigurationNotFoundError) Is(target error) bool {
	return target == ErrConfigurationNotFound
}
