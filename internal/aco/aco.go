// Package aco implements the ant colony construction phase of the
// two-stage metaheuristic: a population of ants builds candidate rosters
// guided by pheromone and heuristic tensors, repairs each one, and
// deposits pheromone along the iteration's best ant before the next round
// evaporates it. Grounded on original_source/algo_ant_colony.py's
// recherche_ant_colony / construct_solution.
package aco

import (
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/alxndrTL/gardien/internal/config"
	"github.com/alxndrTL/gardien/internal/cost"
	"github.com/alxndrTL/gardien/internal/roster"
	"github.com/alxndrTL/gardien/pkg/rosterlog"
)

// Search runs the ACO construction phase for one team.
type Search struct {
	model   *roster.Model
	costIn  cost.Inputs
	weights cost.Weights
	params  config.ACOParams
	epsilon float64
	rng     *rand.Rand
	log     *logrus.Entry
}

// New builds a Search. rng is the team-solve's shared explicit RNG handle.
func New(model *roster.Model, costIn cost.Inputs, weights cost.Weights, params config.ACOParams, epsilon float64, rng *rand.Rand, log *logrus.Entry) *Search {
	return &Search{model: model, costIn: costIn, weights: weights, params: params, epsilon: epsilon, rng: rng, log: log}
}

// Run constructs params.NumIterations generations of params.NumAnts
// candidate rosters each, depositing pheromone along the best ant of each
// generation, and returns the best roster and score seen across the whole
// run. initial is nil when the team has no seed roster.
func (s *Search) Run(initial roster.Roster) (roster.Roster, float64, error) {
	n, d := s.costIn.N, s.costIn.D

	pheromone := newPheromoneTensor(n, d, 1)
	if initial != nil {
		for day := 0; day < d; day++ {
			if initial[day] != roster.Unassigned {
				pheromone.Add(initial[day], day, int(roster.Primary), 1)
			}
			if initial[d+day] != roster.Unassigned {
				pheromone.Add(initial[d+day], day, int(roster.Secondary), 1)
			}
		}
	}
	heuristic := s.buildHeuristic(initial)

	var best roster.Roster
	bestScore := math.Inf(1)

	for iter := 0; iter < s.params.NumIterations; iter++ {
		type ant struct {
			r     roster.Roster
			score float64
		}
		ants := make([]ant, 0, s.params.NumAnts)

		for a := 0; a < s.params.NumAnts; a++ {
			candidate := s.constructAnt(pheromone, heuristic, initial)
			repaired, err := s.model.Repair(candidate)
			if err != nil {
				return nil, 0, err
			}
			score := cost.Evaluate(repaired, s.costIn, s.weights)
			ants = append(ants, ant{r: repaired.Clone(), score: score})
			if score < bestScore {
				bestScore = score
				best = repaired.Clone()
			}
		}

		pheromone.Scale(1 - s.params.Rho)

		iterBest := ants[0]
		for _, a := range ants[1:] {
			if a.score < iterBest.score {
				iterBest = a
			}
		}
		delta := 1.0 / iterBest.score
		for day := 0; day < d; day++ {
			pheromone.Add(iterBest.r[day], day, int(roster.Primary), delta)
			pheromone.Add(iterBest.r[d+day], day, int(roster.Secondary), delta)
		}

		if s.log != nil {
			rosterlog.WithIteration(s.log, iter).WithFields(logrus.Fields{"iteration_best": iterBest.score, "best": bestScore}).Debug("aco iteration complete")
		}
	}

	return best, bestScore, nil
}

// buildHeuristic derives the static heuristic tensor from preferences: a
// physician's affinity for a day's primary slot is pref+1 when the
// preference is non-negative, and a small floor otherwise; the secondary
// slot carries no preference signal and starts uniform. Bold-day initial
// assignees are damped so ants are steered toward changing them.
func (s *Search) buildHeuristic(initial roster.Roster) *pheromoneTensor {
	n, d := s.costIn.N, s.costIn.D
	h := newPheromoneTensor(n, d, 1)

	for i := 0; i < n; i++ {
		for day := 0; day < d; day++ {
			pref := s.costIn.Preferences[i][day]
			var v float64
			if pref >= 0 {
				v = pref + 1
			} else {
				v = s.epsilon
			}
			h.Set(i, day, int(roster.Primary), v)
		}
	}

	if initial != nil {
		for day := 0; day < d; day++ {
			if s.model.IsBold(roster.Primary, day) && initial[day] != roster.Unassigned {
				h.Set(initial[day], day, int(roster.Primary), h.At(initial[day], day, int(roster.Primary))*s.epsilon)
			}
			if s.model.IsBold(roster.Secondary, day) && initial[d+day] != roster.Unassigned {
				h.Set(initial[d+day], day, int(roster.Secondary), h.At(initial[d+day], day, int(roster.Secondary))*s.epsilon)
			}
		}
	}
	return h
}

// constructAnt builds one candidate roster day by day: cells the initial
// roster assigns on non-bold days are copied unchanged, everything else
// (unassigned or bold cells) is sampled from
// exp(alpha*log(tau) + beta*log(eta)) over the eligible physicians for
// that cell. The result is not yet guaranteed to satisfy every invariant
// — Repair is applied by the caller.
func (s *Search) constructAnt(pheromone, heuristic *pheromoneTensor, initial roster.Roster) roster.Roster {
	d := s.costIn.D
	r := make(roster.Roster, 2*d)
	for day := 0; day < d; day++ {
		r[day] = s.drawCell(pheromone, heuristic, roster.Primary, day, r, initial)
		r[d+day] = s.drawCell(pheromone, heuristic, roster.Secondary, day, r, initial)
	}
	return r
}

func (s *Search) drawCell(pheromone, heuristic *pheromoneTensor, slot roster.Slot, day int, built roster.Roster, initial roster.Roster) int {
	n, d := s.costIn.N, s.costIn.D
	idx := roster.Index(slot, day, d)

	if initial != nil && initial[idx] != roster.Unassigned && !s.model.IsBold(slot, day) {
		return initial[idx]
	}

	excluded := map[int]bool{}
	if s.model.RestAfterDuty && day > 0 {
		excluded[built[day-1]] = true
	}
	if slot == roster.Secondary {
		excluded[built[day]] = true
	}
	if initial != nil && s.model.IsBold(slot, day) {
		excluded[initial[idx]] = true
	}

	ids := make([]int, 0, n)
	weights := make([]float64, 0, n)
	sum := 0.0
	for i := 0; i < n; i++ {
		if excluded[i] {
			continue
		}
		tau := math.Max(pheromone.At(i, day, int(slot)), s.epsilon)
		eta := math.Max(heuristic.At(i, day, int(slot)), s.epsilon)
		w := math.Exp(s.params.Alpha*math.Log(tau) + s.params.Beta*math.Log(eta))
		if math.IsNaN(w) || math.IsInf(w, 0) {
			w = s.epsilon
		}
		ids = append(ids, i)
		weights = append(weights, w)
		sum += w
	}

	if len(ids) == 0 {
		return s.rng.Intn(n)
	}
	if sum == 0 {
		return ids[s.rng.Intn(len(ids))]
	}

	draw := s.rng.Float64() * sum
	cum := 0.0
	for k, w := range weights {
		cum += w
		if draw <= cum {
			return ids[k]
		}
	}
	return ids[len(ids)-1]
}
