// Package cost computes the scalar quality score of a roster against a
// team's preferences, attribute coverage requirements and quotas.
package cost

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/alxndrTL/gardien/internal/roster"
)

// Weights holds the tunable penalty/bonus coefficients applied to each term
// of the cost function (spec §6's constant table).
type Weights struct {
	NegPref      float64 // PENALITE_CRITERE_PREF_NEG
	NullPref     float64 // PENALITE_CRITERE_PREF_NULLE
	PosPrefBonus float64 // BONUS_CRITERE_PREF_POS
	Attribute    float64 // penalite_attributs weight
	Gap          float64 // PENALITE_CRITERE_ECART
	SmallGap     float64 // PENALITE_CRITERE_PETIT_ECART
	MinGap       int     // PETIT_ECART
	Quota        float64 // quota-imbalance weight

	// SecondaryAversionThreshold (T_neg) gates the strong-aversion term on
	// the secondary slot: preferences below this value are penalized even
	// though the primary-slot term never sees them directly.
	SecondaryAversionThreshold float64
}

// Inputs bundles the per-team data the cost function reads. It never
// mutates any of it.
type Inputs struct {
	N, D int

	// Preferences[i][d] is physician i's signed preference for day d.
	Preferences [][]float64

	// Attributes maps an attribute name to a length-N membership vector.
	Attributes map[string][]bool

	QuotaPrimary   []float64
	QuotaSecondary []float64

	Underlined roster.UnderlinedDays
}

// Evaluate returns the scalar cost of r under in and w: lower is better.
// It sums the five terms from spec §4.2 — primary preference, secondary
// strong aversion, attribute coverage, spacing, and quota imbalance —
// mirroring definition.py's calcule_critere/calcule_soft_critere.
func Evaluate(r roster.Roster, in Inputs, w Weights) float64 {
	total := primaryPreferenceTerm(r, in, w)
	total += secondaryAversionTerm(r, in, w)
	total += attributeTerm(r, in, w)
	total += spacingTerm(r, in, w)
	total += quotaTerm(r, in, w)
	return total
}

func primaryPreferenceTerm(r roster.Roster, in Inputs, w Weights) float64 {
	total := 0.0
	for d := 0; d < in.D; d++ {
		if in.Underlined.Primary.Has(d) {
			continue
		}
		p := in.Preferences[r[d]][d]
		switch {
		case p < 0:
			total += w.NegPref * p * p
		case p == 0:
			total += w.NullPref
		default:
			total -= w.PosPrefBonus * p * p
		}
	}
	return total
}

func secondaryAversionTerm(r roster.Roster, in Inputs, w Weights) float64 {
	total := 0.0
	for d := 0; d < in.D; d++ {
		if in.Underlined.Secondary.Has(d) {
			continue
		}
		p := in.Preferences[r[in.D+d]][d]
		if p < w.SecondaryAversionThreshold {
			total += w.NegPref * p * p
		}
	}
	return total
}

func attributeTerm(r roster.Roster, in Inputs, w Weights) float64 {
	total := 0.0
	for d := 0; d < in.D; d++ {
		primary := r[d]
		secondary := r[in.D+d]
		for _, members := range in.Attributes {
			if !members[primary] && !members[secondary] {
				total += w.Attribute
			}
		}
	}
	return total
}

// spacingTerm penalizes physicians whose primary-slot days cluster too
// closely: 1/gap for every consecutive pair, plus a flat penalty when the
// gap falls under MinGap (definition.py's calcule_soft_critere).
func spacingTerm(r roster.Roster, in Inputs, w Weights) float64 {
	total := 0.0
	for i := 0; i < in.N; i++ {
		var days []int
		for d := 0; d < in.D; d++ {
			if r[d] == i {
				days = append(days, d)
			}
		}
		if len(days) < 2 {
			continue
		}
		sort.Ints(days)
		for k := 1; k < len(days); k++ {
			gap := days[k] - days[k-1]
			if gap <= 0 {
				continue
			}
			total += w.Gap / float64(gap)
			if gap < w.MinGap {
				total += w.SmallGap
			}
		}
	}
	return total
}

// quotaTerm penalizes the squared deviation between each physician's
// assigned primary/secondary counts and their targets.
func quotaTerm(r roster.Roster, in Inputs, w Weights) float64 {
	countPrimary := make([]float64, in.N)
	countSecondary := make([]float64, in.N)
	for d := 0; d < in.D; d++ {
		countPrimary[r[d]]++
		countSecondary[r[in.D+d]]++
	}
	total := 0.0
	for i := 0; i < in.N; i++ {
		dp := in.QuotaPrimary[i] - countPrimary[i]
		ds := in.QuotaSecondary[i] - countSecondary[i]
		total += dp*dp + ds*ds
	}
	return w.Quota * total
}

// DeriveQuotas computes one team's target assignment counts from how many
// positive preferences each physician expressed, scaled by the inverse of
// their reduction factor and normalized to sum to D. Physicians with a
// reduction of zero are treated as a reduction of one. If nobody expressed
// a positive preference, the targets fall back to a uniform D/N split —
// the resolution spec §9 records for that open question.
func DeriveQuotas(preferences [][]float64, reductions []float64, d int) []float64 {
	n := len(preferences)
	weighted := make([]float64, n)
	anyPositive := false
	for i := 0; i < n; i++ {
		count := 0.0
		for _, p := range preferences[i] {
			if p > 0 {
				count++
			}
		}
		if count > 0 {
			anyPositive = true
		}
		red := reductions[i]
		if red == 0 {
			red = 1
		}
		weighted[i] = count / red
	}

	if !anyPositive {
		target := float64(d) / float64(n)
		out := make([]float64, n)
		for i := range out {
			out[i] = target
		}
		return out
	}

	sum := floats.Sum(weighted)
	out := make([]float64, n)
	copy(out, weighted)
	floats.Scale(float64(d)/sum, out)
	return out
}
