package tabu

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alxndrTL/gardien/internal/config"
	"github.com/alxndrTL/gardien/internal/cost"
	"github.com/alxndrTL/gardien/internal/roster"
)

func weights() cost.Weights {
	return config.Default().Weights
}

func TestSearch_Run_NeverWorsensBest(t *testing.T) {
	n, d := 4, 6
	preferences := make([][]float64, n)
	for i := range preferences {
		preferences[i] = make([]float64, d)
		for day := range preferences[i] {
			preferences[i][day] = float64((i*2+day)%5) - 2
		}
	}
	reductions := make([]float64, n)
	for i := range reductions {
		reductions[i] = 1
	}

	model := roster.NewModel(roster.Config{N: n, D: d, RestAfterDuty: true}, rand.New(rand.NewSource(11)))
	costIn := cost.Inputs{
		N: n, D: d,
		Preferences:    preferences,
		QuotaPrimary:   cost.DeriveQuotas(preferences, reductions, d),
		QuotaSecondary: cost.DeriveQuotas(preferences, reductions, d),
	}
	w := weights()

	seed, err := model.RandomRoster()
	require.NoError(t, err)
	seedScore := cost.Evaluate(seed, costIn, w)

	params := config.Default().TS
	params.NumIterations = 40
	params.NumNeighbors = 8
	params.MaxStagnation = 15
	params.TabuLength = 10
	search := New(model, costIn, w, params, rand.New(rand.NewSource(11)), nil)

	best, score, err := search.Run(seed, nil, 0, false)
	require.NoError(t, err)
	assert.False(t, model.DetectViolation(best))
	assert.LessOrEqual(t, score, seedScore)
}

func TestSearch_Run_RespectsDistanceBudget(t *testing.T) {
	n, d := 3, 5
	preferences := [][]float64{
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
		{0, 0, 0, 0, 0},
	}
	reductions := []float64{1, 1, 1}
	initial := roster.Roster{0, 1, 2, 0, 1, 1, 2, 0, 1, 2}

	model := roster.NewModel(roster.Config{N: n, D: d, Initial: initial}, rand.New(rand.NewSource(5)))
	costIn := cost.Inputs{
		N: n, D: d,
		Preferences:    preferences,
		QuotaPrimary:   cost.DeriveQuotas(preferences, reductions, d),
		QuotaSecondary: cost.DeriveQuotas(preferences, reductions, d),
	}
	w := weights()
	params := config.Default().TS
	params.NumIterations = 20
	params.NumNeighbors = 6
	params.MaxStagnation = 10
	params.TabuLength = 5
	params.MaxDistBase = 2
	maxDist := ComputeMaxDist(params.MaxDistBase, roster.BoldDays{}, initial)

	search := New(model, costIn, w, params, rand.New(rand.NewSource(5)), nil)
	best, _, err := search.Run(initial.Clone(), initial, maxDist, true)

	require.NoError(t, err)
	assert.LessOrEqual(t, model.Distance(best, initial), maxDist)
}
