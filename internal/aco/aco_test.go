package aco

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alxndrTL/gardien/internal/config"
	"github.com/alxndrTL/gardien/internal/cost"
	"github.com/alxndrTL/gardien/internal/roster"
)

func TestSearch_Run_ProducesRepairedRoster(t *testing.T) {
	n, d := 4, 6
	preferences := make([][]float64, n)
	for i := range preferences {
		preferences[i] = make([]float64, d)
		for day := range preferences[i] {
			preferences[i][day] = float64((i + day) % 3 - 1)
		}
	}

	model := roster.NewModel(roster.Config{N: n, D: d, RestAfterDuty: true}, rand.New(rand.NewSource(7)))
	costIn := cost.Inputs{
		N: n, D: d,
		Preferences:    preferences,
		QuotaPrimary:   cost.DeriveQuotas(preferences, uniformReductions(n), d),
		QuotaSecondary: cost.DeriveQuotas(preferences, uniformReductions(n), d),
	}
	defaults := config.Default()
	weights := defaults.Weights
	params := defaults.ACO
	params.NumAnts = 4
	params.NumIterations = 5

	search := New(model, costIn, weights, params, defaults.Epsilon, rand.New(rand.NewSource(7)), nil)
	best, score, err := search.Run(nil)

	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Len(t, best, 2*d)
	assert.False(t, model.DetectViolation(best))
	assert.False(t, score != score, "score must not be NaN")
}

func TestSearch_Run_RespectsBoldDayWithInitialRoster(t *testing.T) {
	n, d := 3, 4
	initial := roster.Roster{0, 1, 2, 0, 1, 2, 0, 1}
	preferences := [][]float64{
		{1, 0, -1, 1},
		{0, 1, 1, 0},
		{-1, -1, 0, 1},
	}
	bold := roster.BoldDays{Primary: roster.DaySet{1: true}}

	model := roster.NewModel(roster.Config{N: n, D: d, Initial: initial, Bold: bold, RestAfterDuty: true}, rand.New(rand.NewSource(3)))
	costIn := cost.Inputs{
		N: n, D: d,
		Preferences:    preferences,
		QuotaPrimary:   cost.DeriveQuotas(preferences, uniformReductions(n), d),
		QuotaSecondary: cost.DeriveQuotas(preferences, uniformReductions(n), d),
	}
	defaults := config.Default()
	weights := defaults.Weights
	params := defaults.ACO
	params.NumAnts = 3
	params.NumIterations = 4
	params.Rho = 0.2

	search := New(model, costIn, weights, params, defaults.Epsilon, rand.New(rand.NewSource(3)), nil)
	best, _, err := search.Run(initial)

	require.NoError(t, err)
	assert.NotEqual(t, initial[1], best[1], "bold day 1 primary must differ from the initial roster")
}

func uniformReductions(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
