// Package tabu implements the refinement phase of the two-stage
// metaheuristic: local search over single-cell neighbors with a FIFO tabu
// memory, an aspiration criterion, and a distance budget bounding how far
// the refined roster may drift from the team's seed. Grounded on
// original_source/algo_tabou.py's recherche_tabou / planning_voisin.
package tabu

import (
	"encoding/binary"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/alxndrTL/gardien/internal/config"
	"github.com/alxndrTL/gardien/internal/cost"
	"github.com/alxndrTL/gardien/internal/roster"
	"github.com/alxndrTL/gardien/pkg/rosterlog"
)

// Search runs the tabu-search refinement phase for one team.
type Search struct {
	model   *roster.Model
	costIn  cost.Inputs
	weights cost.Weights
	params  config.TSParams
	rng     *rand.Rand
	log     *logrus.Entry
}

// New builds a Search.
func New(model *roster.Model, costIn cost.Inputs, weights cost.Weights, params config.TSParams, rng *rand.Rand, log *logrus.Entry) *Search {
	return &Search{model: model, costIn: costIn, weights: weights, params: params, rng: rng, log: log}
}

// ComputeMaxDist derives the distance bound a refined roster must stay
// within of the team's seed: a base constant plus one slot for every bold
// day (each of which is guaranteed to differ from the seed) plus one slot
// for every cell the seed left unassigned (spec §6, d_max).
func ComputeMaxDist(base int, bold roster.BoldDays, initial roster.Roster) int {
	return base + len(bold.Primary) + len(bold.Secondary) + roster.CountUnassigned(initial)
}

type tabuMemory struct {
	order    []string
	member   map[string]int
	capacity int
}

func newTabuMemory(capacity int) *tabuMemory {
	return &tabuMemory{member: make(map[string]int), capacity: capacity}
}

func rosterKey(r roster.Roster) string {
	buf := make([]byte, len(r)*4)
	for i, v := range r {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(int32(v)))
	}
	return string(buf)
}

func (t *tabuMemory) Contains(r roster.Roster) bool {
	return t.member[rosterKey(r)] > 0
}

func (t *tabuMemory) Push(r roster.Roster) {
	if t.capacity <= 0 {
		return
	}
	key := rosterKey(r)
	t.order = append(t.order, key)
	t.member[key]++
	if len(t.order) > t.capacity {
		evicted := t.order[0]
		t.order = t.order[1:]
		t.member[evicted]--
		if t.member[evicted] <= 0 {
			delete(t.member, evicted)
		}
	}
}

// Run refines seed over params.NumIterations iterations and returns the
// best roster and score found. initial is the team's seed roster (nil if
// none) used for the distance budget; hasDistBound is false when no
// budget applies (no seed roster to measure against).
func (s *Search) Run(seed roster.Roster, initial roster.Roster, maxDist int, hasDistBound bool) (roster.Roster, float64, error) {
	tabu := newTabuMemory(s.params.TabuLength)

	current := seed.Clone()
	currentScore := cost.Evaluate(current, s.costIn, s.weights)
	best := current.Clone()
	bestScore := currentScore

	stagnation := 0
	for iter := 0; iter < s.params.NumIterations && stagnation < s.params.MaxStagnation; iter++ {
		type candidate struct {
			r     roster.Roster
			score float64
		}
		var admissible []candidate

		maxAttempts := s.params.TentativeMult * s.params.NumNeighbors
		for attempts := 0; attempts < maxAttempts && len(admissible) < s.params.NumNeighbors; attempts++ {
			neighbor, err := s.generateNeighbor(current)
			if err != nil {
				return nil, 0, err
			}
			repaired, err := s.model.Repair(neighbor)
			if err != nil {
				return nil, 0, err
			}
			if hasDistBound && s.model.Distance(repaired, initial) > maxDist {
				continue
			}
			score := cost.Evaluate(repaired, s.costIn, s.weights)
			admissible = append(admissible, candidate{r: repaired.Clone(), score: score})
		}

		if len(admissible) == 0 {
			stagnation++
			continue
		}

		var chosen *candidate
		for i := range admissible {
			c := admissible[i]
			if tabu.Contains(c.r) && c.score >= bestScore {
				continue
			}
			if chosen == nil || c.score < chosen.score {
				cc := c
				chosen = &cc
			}
		}

		if chosen == nil {
			stagnation++
			continue
		}

		tabu.Push(current)
		current = chosen.r
		currentScore = chosen.score

		if currentScore < bestScore {
			best = current.Clone()
			bestScore = currentScore
			stagnation = 0
		} else {
			stagnation++
		}

		if s.log != nil {
			rosterlog.WithIteration(s.log, iter).WithFields(logrus.Fields{"current": currentScore, "best": bestScore, "stagnation": stagnation}).Debug("tabu iteration complete")
		}
	}

	return best, bestScore, nil
}

// generateNeighbor resamples one random cell of cur, excluding the cell's
// current occupant when the day is bold in that slot (so the move cannot
// re-select the value the model is required to keep different).
func (s *Search) generateNeighbor(cur roster.Roster) (roster.Roster, error) {
	n := cur.Clone()
	slot := roster.Primary
	if s.rng.Intn(2) == 1 {
		slot = roster.Secondary
	}
	day := s.rng.Intn(s.model.D)
	idx := roster.Index(slot, day, s.model.D)

	excluded := map[int]bool{}
	if s.model.IsBold(slot, day) {
		excluded[n[idx]] = true
	}
	v, err := s.model.RandomPhysicianExcept(excluded)
	if err != nil {
		return nil, &roster.InfeasibleRepairError{Day: day, Slot: slot}
	}
	n[idx] = v
	return n, nil
}
