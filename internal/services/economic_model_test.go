package services

import (
	"dispatch-route-service/internal/domain"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEconomicModelValid(t *testing.T) {
	require.NoError(t, DefaultEconomicModel().Validate())
}

func TestEconomicModelValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*EconomicModel)
		wantErr string
	}{
		{"zero meters per litre", func(m *EconomicModel) { m.MetersPerLitre = 0 }, "meters_per_litre must be positive"},
		{"nan weight", func(m *EconomicModel) { m.TimeWeight = math.NaN() }, "time_weight must be finite"},
		{"inf fare", func(m *EconomicModel) { m.BaseFare = math.Inf(1) }, "base_fare must be finite"},
		{"negative weight allowed", func(m *EconomicModel) { m.RevenueWeight = -1 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DefaultEconomicModel()
			tt.mutate(&m)
			err := m.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestScoreZeroCandidate(t *testing.T) {
	sc := DefaultEconomicModel().Score(3, domain.RouteCandidate{})

	assert.Equal(t, 3, sc.Index)
	assert.Zero(t, sc.FuelCost)
	assert.Zero(t, sc.TimeMinutes)
	// Only the base fare contributes.
	assert.Equal(t, 10.0, sc.Revenue)
	assert.Equal(t, -10.0, sc.Score)
}
