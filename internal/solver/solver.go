// Package solver exposes the two external entry points over the
// roster/cost/aco/tabu stack: SolveMono for a single team and SolveMulti
// for a set of teams coordinated through sequential cross-team masking.
// Grounded on original_source/solve.py's solve_mono/solve_multi.
package solver

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/alxndrTL/gardien/internal/aco"
	"github.com/alxndrTL/gardien/internal/config"
	"github.com/alxndrTL/gardien/internal/cost"
	"github.com/alxndrTL/gardien/internal/roster"
	"github.com/alxndrTL/gardien/internal/tabu"
	"github.com/alxndrTL/gardien/pkg/rosterlog"
)

// TeamInput bundles one team's complete solve input. ID is optional and
// purely cosmetic (logging/tracing); the solver never inspects it,
// mirroring the teacher's OptimizationPlayer.ID/ExternalID split.
type TeamInput struct {
	ID uuid.UUID

	N, D int

	Preferences [][]float64
	Reductions  []float64
	Attributes  map[string][]bool

	// QuotaPrimary/QuotaSecondary are optional; when nil they are derived
	// from Preferences/Reductions via cost.DeriveQuotas.
	QuotaPrimary   []float64
	QuotaSecondary []float64

	Initial    roster.Roster
	Bold       roster.BoldDays
	Underlined roster.UnderlinedDays

	// Skip, when true, returns Initial unchanged rather than solving
	// (solve.py's skip_optim).
	Skip bool
}

// TeamResult is one team's solved roster and its final cost.
type TeamResult struct {
	Roster roster.Roster
	Score  float64
}

func buildCostInputs(in TeamInput) cost.Inputs {
	quotaPrimary := in.QuotaPrimary
	if quotaPrimary == nil {
		quotaPrimary = cost.DeriveQuotas(in.Preferences, in.Reductions, in.D)
	}
	quotaSecondary := in.QuotaSecondary
	if quotaSecondary == nil {
		quotaSecondary = cost.DeriveQuotas(in.Preferences, in.Reductions, in.D)
	}
	return cost.Inputs{
		N:              in.N,
		D:              in.D,
		Preferences:    in.Preferences,
		Attributes:     in.Attributes,
		QuotaPrimary:   quotaPrimary,
		QuotaSecondary: quotaSecondary,
		Underlined:     in.Underlined,
	}
}

// SolveMono runs ACO followed by TS for one team and returns the refined
// roster. If in.Skip is set, in.Initial is returned unchanged at score 0.
// acoLog and tsLog scope each phase's per-iteration logging (nil disables
// it); SolveMulti builds these with rosterlog.WithSolve.
func SolveMono(in TeamInput, params config.Params, rng *rand.Rand, acoLog, tsLog *logrus.Entry) (TeamResult, error) {
	if in.Skip {
		if in.Initial == nil {
			return TeamResult{}, fmt.Errorf("solver: skip requested with no initial roster")
		}
		return TeamResult{Roster: in.Initial.Clone(), Score: 0}, nil
	}

	model := roster.NewModel(roster.Config{
		N:             in.N,
		D:             in.D,
		Initial:       in.Initial,
		Bold:          in.Bold,
		Underlined:    in.Underlined,
		RestAfterDuty: params.EnableRestAfterDuty,
	}, rng)

	costIn := buildCostInputs(in)

	acoSearch := aco.New(model, costIn, params.Weights, params.ACO, params.Epsilon, rng, acoLog)
	acoResult, _, err := acoSearch.Run(in.Initial)
	if err != nil {
		return TeamResult{}, fmt.Errorf("solver: aco phase: %w", err)
	}

	maxDist := 0
	hasDist := in.Initial != nil
	if hasDist {
		maxDist = tabu.ComputeMaxDist(params.TS.MaxDistBase, in.Bold, in.Initial)
	}

	tabuSearch := tabu.New(model, costIn, params.Weights, params.TS, rng, tsLog)
	best, score, err := tabuSearch.Run(acoResult, in.Initial, maxDist, hasDist)
	if err != nil {
		return TeamResult{}, fmt.Errorf("solver: tabu phase: %w", err)
	}

	return TeamResult{Roster: best, Score: score}, nil
}

// MultiTeamInput bundles every team plus the global<->local physician
// index maps the cross-team mask needs.
type MultiTeamInput struct {
	Teams []TeamInput

	// LocalToGlobal[e][j] is team e's local physician j's global ID.
	LocalToGlobal [][]int

	// GlobalToLocal[e] maps a global physician ID to team e's local index,
	// for physicians who belong to team e; physicians outside team e are
	// simply absent from the map.
	GlobalToLocal []map[int]int
}

// SolveMulti solves every team in order, applying the cross-team
// preference mask after each team (including skipped teams) completes, so
// later teams never double-book a physician already committed elsewhere
// on a given day (original_source/solve.py's solve_multi).
func SolveMulti(in MultiTeamInput, params config.Params, rng *rand.Rand, log *logrus.Entry) ([]TeamResult, error) {
	teams := make([]TeamInput, len(in.Teams))
	for e, t := range in.Teams {
		t.Preferences = cloneMatrix(t.Preferences)
		teams[e] = t
	}

	results := make([]TeamResult, len(teams))

	// Pass 1: teams with a fixed roster mask out every other team first,
	// so the solved teams in pass 2 never conflict with a fixed schedule.
	for e := range teams {
		if !teams[e].Skip {
			continue
		}
		res, err := SolveMono(teams[e], params, rng, rosterlog.WithSolve(e, "aco"), rosterlog.WithSolve(e, "tabu"))
		if err != nil {
			return nil, fmt.Errorf("solver: team %d: %w", e, err)
		}
		results[e] = res
		applyCrossTeamMask(e, res.Roster, teams, in, params)
	}

	// Pass 2: solve every remaining team in order, masking as each
	// finishes.
	for e := range teams {
		if teams[e].Skip {
			continue
		}
		res, err := SolveMono(teams[e], params, rng, rosterlog.WithSolve(e, "aco"), rosterlog.WithSolve(e, "tabu"))
		if err != nil {
			return nil, fmt.Errorf("solver: team %d: %w", e, err)
		}
		results[e] = res
		applyCrossTeamMask(e, res.Roster, teams, in, params)
	}

	return results, nil
}

// applyCrossTeamMask rewrites every other team's preference matrix so the
// physician holding day d's primary/secondary slot in team e is hard-
// blocked from an overlapping slot elsewhere, and discouraged from a
// primary slot the day before (so they may still take a lighter secondary
// slot but not another primary).
func applyCrossTeamMask(e int, r roster.Roster, teams []TeamInput, in MultiTeamInput, params config.Params) {
	d := teams[e].D
	for eb := range teams {
		if eb == e {
			continue
		}
		dOther := teams[eb].D
		for day := 0; day < d; day++ {
			if day >= dOther {
				break
			}
			maskAssignee(in.LocalToGlobal[e][r[day]], day, dOther, true, teams[eb], in.GlobalToLocal[eb], params)
			maskAssignee(in.LocalToGlobal[e][r[d+day]], day, dOther, false, teams[eb], in.GlobalToLocal[eb], params)
		}
	}
}

func maskAssignee(globalID, day, otherDays int, isPrimary bool, other TeamInput, globalToLocal map[int]int, params config.Params) {
	local, ok := globalToLocal[globalID]
	if !ok {
		return
	}
	other.Preferences[local][day] = params.HardMask
	if isPrimary && day+1 < otherDays {
		other.Preferences[local][day+1] = params.HardMask
	}
	if day-1 >= 0 {
		if other.Preferences[local][day-1] > params.Weights.SecondaryAversionThreshold {
			other.Preferences[local][day-1] = params.Weights.SecondaryAversionThreshold
		}
	}
}

func cloneMatrix(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}
