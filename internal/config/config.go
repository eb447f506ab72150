// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"time"

	"github.com/iwvelando/quote-engine/pkg/constants"
	"github.com/iwvelando/quote-engine/pkg/datetime"
	"github.com/iwvelando/quote-engine/pkg/lease"
	"github.com/iwvelando/quote-engine/pkg/rateband"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for quote-engine.
type Configuration struct {
	Logging   LoggingConfig  `yaml:"logging,omitempty" mapstructure:"logging"`
	Output    OutputConfig   `yaml:"output,omitempty" mapstructure:"output"`
	Solver    SolverConfig   `yaml:"solver,omitempty" mapstructure:"solver"`
	RateBands RateBandConfig `yaml:"rateBands,omitempty" mapstructure:"rateBands"`
	Leases    []Lease        `yaml:"leases,omitempty" mapstructure:"leases"`
	Loans     []Loan         `yaml:"loans,omitempty" mapstructure:"loans"`
	// AsOf fixes the month lease schedules start in; empty means now.
	AsOf string `yaml:"asOf,omitempty" mapstructure:"asOf"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// SolverConfig overrides the loan solver defaults for every configured loan.
type SolverConfig struct {
	ConvergenceStep float64 `json:"convergenceStep,omitempty" yaml:"convergenceStep,omitempty" mapstructure:"convergenceStep"`
	MaxIterations   int     `json:"maxIterations,omitempty" yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
	Tolerance       float64 `json:"tolerance,omitempty" yaml:"tolerance,omitempty" mapstructure:"tolerance"`
}

// RateBandConfig says where the rate band table comes from.
type RateBandConfig struct {
	Source string              `yaml:"source,omitempty" mapstructure:"source"` // file, postgres
	Table  []rateband.RateBand `yaml:"table,omitempty" mapstructure:"table"`
	DSN    string              `yaml:"dsn,omitempty" mapstructure:"dsn"`
	Query  string              `yaml:"query,omitempty" mapstructure:"query"`
}

// Lease is a named lease quote request.
type Lease struct {
	Name    string        `yaml:"name" mapstructure:"name"`
	Request lease.Request `yaml:"request" mapstructure:"request"`
}

// Loan is a named loan to amortize.
type Loan struct {
	Name                             string  `json:"name" yaml:"name" mapstructure:"name"`
	StartDate                        string  `json:"startDate" yaml:"startDate" mapstructure:"startDate"`
	Principal                        float64 `json:"principal" yaml:"principal" mapstructure:"principal"`
	AnnualInterestRatePercent        float64 `json:"annualInterestRatePercent" yaml:"annualInterestRatePercent" mapstructure:"annualInterestRatePercent"`
	TotalPeriods                     int     `json:"totalPeriods" yaml:"totalPeriods" mapstructure:"totalPeriods"` // months
	PrepaymentAmount                 float64 `json:"prepaymentAmount,omitempty" yaml:"prepaymentAmount,omitempty" mapstructure:"prepaymentAmount"`
	PrepaymentPeriod                 int     `json:"prepaymentPeriod,omitempty" yaml:"prepaymentPeriod,omitempty" mapstructure:"prepaymentPeriod"`
	PrincipalAmortizationStartPeriod int     `json:"principalAmortizationStartPeriod,omitempty" yaml:"principalAmortizationStartPeriod,omitempty" mapstructure:"principalAmortizationStartPeriod"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()

	v.SetConfigType("yml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	if configuration.Output.Format == "" {
		configuration.Output.Format = constants.OutputFormatPretty
	}
	if configuration.RateBands.Source == "" {
		configuration.RateBands.Source = constants.RateBandSourceFile
	}
	return &configuration, nil
}

// ScheduleStart returns the month lease schedules start in: AsOf when set,
// otherwise now's month.
func (c *Configuration) ScheduleStart(now time.Time) (time.Time, error) {
	if c.AsOf == "" {
		return datetime.MonthStart(now), nil
	}
	t, err := datetime.ParseDate(c.AsOf)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid asOf: %w", err)
	}
	return datetime.MonthStart(t), nil
}
