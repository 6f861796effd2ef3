package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// EconomicModel holds the operator's cost and fare figures and the weights
// that combine them into a route score. Lower scores are preferred.
//
// The score subtracts revenue from cost-like terms, so a single minimum
// trades off fuel, time and fare income in one linear combination. The sign
// and weights are business policy and are applied as given.
type EconomicModel struct {
	FuelPricePerLitre float64 `mapstructure:"fuel_price_per_litre" json:"fuel_price_per_litre"`
	MetersPerLitre    float64 `mapstructure:"meters_per_litre" json:"meters_per_litre"`
	BaseFare          float64 `mapstructure:"base_fare" json:"base_fare"`
	PricePerKm        float64 `mapstructure:"price_per_km" json:"price_per_km"`
	PricePerMinute    float64 `mapstructure:"price_per_minute" json:"price_per_minute"`
	FuelWeight        float64 `mapstructure:"fuel_weight" json:"fuel_weight"`
	TimeWeight        float64 `mapstructure:"time_weight" json:"time_weight"`
	RevenueWeight     float64 `mapstructure:"revenue_weight" json:"revenue_weight"`
}

// DefaultEconomicModel returns the stock dispatch economics.
func DefaultEconomicModel() EconomicModel {
	return EconomicModel{
		FuelPricePerLitre: 13,
		MetersPerLitre:    35000,
		BaseFare:          10,
		PricePerKm:        2,
		PricePerMinute:    0.5,
		FuelWeight:        1,
		TimeWeight:        0.5,
		RevenueWeight:     1,
	}
}

// Validate rejects models that would produce non-finite scores.
func (m EconomicModel) Validate() error {
	var errs []string

	fields := []struct {
		name string
		v    float64
	}{
		{"fuel_price_per_litre", m.FuelPricePerLitre},
		{"meters_per_litre", m.MetersPerLitre},
		{"base_fare", m.BaseFare},
		{"price_per_km", m.PricePerKm},
		{"price_per_minute", m.PricePerMinute},
		{"fuel_weight", m.FuelWeight},
		{"time_weight", m.TimeWeight},
		{"revenue_weight", m.RevenueWeight},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			errs = append(errs, fmt.Sprintf("%s must be finite", f.name))
		}
	}
	if m.MetersPerLitre <= 0 {
		errs = append(errs, "meters_per_litre must be positive")
	}

	if len(errs) > 0 {
		return errors.New("economic model: " + strings.Join(errs, "; "))
	}
	return nil
}
