package solver

// CoherenceViolation reports one residual conflict found by CheckCoherence.
type CoherenceViolation struct {
	GlobalPhysician int
	Day             int
	Kind            string // "collision" or "no-rest"
}

const (
	coherenceNone      = 0
	coherencePrimary   = 1
	coherenceSecondary = 2
)

// CheckCoherence re-scans every team's finished roster, translated to
// global physician IDs, for residual double-bookings and rest-after-duty
// violations that crossed team boundaries undetected by the in-loop mask
// of SolveMulti. It is a pure diagnostic with no side effects, intended to
// be called by an embedding application after SolveMulti returns.
// Grounded on original_source/gardien.py's check_coherence.
func CheckCoherence(results []TeamResult, teamDays []int, localToGlobal [][]int) []CoherenceViolation {
	maxDay := 0
	for _, dd := range teamDays {
		if dd > maxDay {
			maxDay = dd
		}
	}
	numGlobal := 0
	for _, ltg := range localToGlobal {
		for _, g := range ltg {
			if g+1 > numGlobal {
				numGlobal = g + 1
			}
		}
	}

	schedule := make([][]int, numGlobal)
	owner := make([][]int, numGlobal) // team holding schedule[g][day]
	for i := range schedule {
		schedule[i] = make([]int, maxDay)
		owner[i] = make([]int, maxDay)
	}

	var violations []CoherenceViolation

	for e, res := range results {
		d := teamDays[e]
		for day := 0; day < d; day++ {
			primaryGlobal := localToGlobal[e][res.Roster[day]]
			if schedule[primaryGlobal][day] != coherenceNone {
				violations = append(violations, CoherenceViolation{GlobalPhysician: primaryGlobal, Day: day, Kind: "collision"})
			}
			schedule[primaryGlobal][day] = coherencePrimary
			owner[primaryGlobal][day] = e

			secondaryGlobal := localToGlobal[e][res.Roster[d+day]]
			if schedule[secondaryGlobal][day] != coherenceNone {
				violations = append(violations, CoherenceViolation{GlobalPhysician: secondaryGlobal, Day: day, Kind: "collision"})
			}
			schedule[secondaryGlobal][day] = coherenceSecondary
			owner[secondaryGlobal][day] = e
		}
	}

	for g := 0; g < numGlobal; g++ {
		for day := 0; day < maxDay-1; day++ {
			if schedule[g][day] == coherencePrimary && schedule[g][day+1] != coherenceNone && owner[g][day+1] != owner[g][day] {
				violations = append(violations, CoherenceViolation{GlobalPhysician: g, Day: day + 1, Kind: "no-rest"})
			}
		}
	}

	return violations
}
