// Package lease derives monthly lease payments and their calendar-year payment
// schedules from a resolved rate band.
package lease

import (
	"fmt"
	"time"

	"github.com/iwvelando/quote-engine/pkg/constants"
	"github.com/iwvelando/quote-engine/pkg/mathutil"
	"github.com/iwvelando/quote-engine/pkg/rateband"
	"go.uber.org/zap"
)

// Request holds the deal parameters for a lease quote.
type Request struct {
	GrossLeaseAmount              float64 `json:"grossLeaseAmount" yaml:"grossLeaseAmount" mapstructure:"grossLeaseAmount"`
	CapacityKW                    float64 `json:"capacityKW" yaml:"capacityKW" mapstructure:"capacityKW"`
	Productivity                  float64 `json:"productivity" yaml:"productivity" mapstructure:"productivity"` // kWh/kW/yr
	LeaseTermYears                int     `json:"leaseTermYears" yaml:"leaseTermYears" mapstructure:"leaseTermYears"`
	RateEscalatorPercent          float64 `json:"rateEscalatorPercent" yaml:"rateEscalatorPercent" mapstructure:"rateEscalatorPercent"`
	IsSolar                       bool    `json:"isSolar" yaml:"isSolar" mapstructure:"isSolar"`
	IsRetrofit                    bool    `json:"isRetrofit" yaml:"isRetrofit" mapstructure:"isRetrofit"`
	UtilityProgramName            string  `json:"utilityProgramName" yaml:"utilityProgramName" mapstructure:"utilityProgramName"`
	StorageSizeKWh                float64 `json:"storageSizeKWh" yaml:"storageSizeKWh" mapstructure:"storageSizeKWh"`
	MonthlyUtilityPaymentBaseline float64 `json:"monthlyUtilityPaymentBaseline" yaml:"monthlyUtilityPaymentBaseline" mapstructure:"monthlyUtilityPaymentBaseline"`
}

// Criteria maps the request onto rate band lookup criteria.
func (r Request) Criteria() rateband.Criteria {
	return rateband.Criteria{
		IsSolar:              r.IsSolar,
		IsRetrofit:           r.IsRetrofit,
		UtilityProgramName:   r.UtilityProgramName,
		ContractTermYears:    r.LeaseTermYears,
		StorageSizeKWh:       r.StorageSizeKWh,
		RateEscalatorPercent: r.RateEscalatorPercent,
		CapacityKW:           r.CapacityKW,
		Productivity:         r.Productivity,
	}
}

// MonthlyPayment is one month of a yearly bucket. Month runs 1..12.
type MonthlyPayment struct {
	Month  int     `json:"month"`
	Amount float64 `json:"amount"`
}

// YearlyPayments groups the payments falling in one calendar year.
type YearlyPayments struct {
	Year            int              `json:"year"`
	MonthlyPayments []MonthlyPayment `json:"monthlyPayments"`
}

// Result is a computed lease quote.
type Result struct {
	MonthlyLeasePayment   float64          `json:"monthlyLeasePayment"`
	RatePerKWh            float64          `json:"ratePerKWh"`
	MonthlyEnergyPayment  float64          `json:"monthlyEnergyPayment"`
	YearlyPaymentSchedule []YearlyPayments `json:"yearlyPaymentSchedule"`
}

// PaymentCount returns the number of month entries across all year buckets.
func (r Result) PaymentCount() int {
	count := 0
	for _, year := range r.YearlyPaymentSchedule {
		count += len(year.MonthlyPayments)
	}
	return count
}

// BandResolver resolves a rate band for lookup criteria.
type BandResolver interface {
	Resolve(c rateband.Criteria) (rateband.RateBand, error)
}

// Calculator computes lease quotes. It holds no mutable state.
type Calculator struct {
	logger   *zap.Logger
	resolver BandResolver
}

// NewCalculator creates a calculator resolving bands through resolver.
func NewCalculator(logger *zap.Logger, resolver BandResolver) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger, resolver: resolver}
}

// Calculate quotes req with the schedule starting in the current month.
func (c *Calculator) Calculate(req Request) (Result, error) {
	return c.CalculateWithFixedTime(req, time.Now())
}

// CalculateWithFixedTime quotes req with the schedule starting in now's month.
func (c *Calculator) CalculateWithFixedTime(req Request, now time.Time) (Result, error) {
	band, err := c.resolver.Resolve(req.Criteria())
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve rate band: %w", err)
	}

	payment, rate := MonthlyLeasePayment(req, band)

	c.logger.Debug(fmt.Sprintf("lease payment %.2f at %.6f/kWh for %d years", payment, rate, req.LeaseTermYears),
		zap.String("op", "lease.Calculate"),
		zap.Float64("bandSolarSizeMin", band.SolarSizeMin),
		zap.Float64("bandSolarSizeMax", band.SolarSizeMax),
	)

	return Result{
		MonthlyLeasePayment:   payment,
		RatePerKWh:            rate,
		MonthlyEnergyPayment:  payment + req.MonthlyUtilityPaymentBaseline,
		YearlyPaymentSchedule: YearlySchedule(now, req.LeaseTermYears, payment),
	}, nil
}

// MonthlyLeasePayment prices req against band and returns the monthly payment
// and the adjusted per-kWh rate. Pricing uses the band's midpoint system size
// and productivity rather than the request's own values.
func MonthlyLeasePayment(req Request, band rateband.RateBand) (payment, adjustedRatePerKWh float64) {
	actualCostPerKw := req.GrossLeaseAmount / req.CapacityKW
	averageSystemSizeKW := mathutil.Midpoint(band.SolarSizeMin, band.SolarSizeMax)
	averageProductivity := mathutil.Midpoint(band.ProductivityMin, band.ProductivityMax)

	rateDeltaPerKWh := (actualCostPerKw - band.AdjustedInstallCostPerKw) * band.RateFactor * averageSystemSizeKW * constants.WattsPerKilowatt
	adjustedRatePerKWh = band.RatePerKWh + rateDeltaPerKWh

	payment = adjustedRatePerKWh*averageSystemSizeKW*averageProductivity/constants.MonthsPerYear + band.StoragePayment
	return payment, adjustedRatePerKWh
}

// YearlySchedule emits termYears*12 payments starting in start's month,
// grouped by calendar year. The first bucket is partial unless start is in
// January.
func YearlySchedule(start time.Time, termYears int, amount float64) []YearlyPayments {
	total := termYears * constants.MonthsPerYear
	if total <= 0 {
		return nil
	}

	schedule := make([]YearlyPayments, 0, termYears+1)
	year, month := start.Year(), start.Month()
	bucket := YearlyPayments{Year: year}

	for i := 0; i < total; i++ {
		bucket.MonthlyPayments = append(bucket.MonthlyPayments, MonthlyPayment{Month: int(month), Amount: amount})
		if month == time.December {
			schedule = append(schedule, bucket)
			year++
			month = time.January
			bucket = YearlyPayments{Year: year}
			continue
		}
		month++
	}
	if len(bucket.MonthlyPayments) > 0 {
		schedule = append(schedule, bucket)
	}

	return schedule
}
