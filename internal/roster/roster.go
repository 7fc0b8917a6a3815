// Package roster implements the duty-roster data model: the flat
// assignment vector, hard-constraint detection and repair, and the
// distance metric used to bound how far a search may wander from a seed.
package roster

import (
	"errors"
	"fmt"
	"math/rand"
)

// Unassigned is the sentinel value permitted only in input rosters; it
// never appears in a roster returned by Repair.
const Unassigned = -1

// Roster is the flat 2D assignment vector: positions [0, D) hold the
// primary-slot physician for each day, positions [D, 2D) hold the
// secondary-slot physician.
type Roster []int

// Clone returns an independent copy of r.
func (r Roster) Clone() Roster {
	out := make(Roster, len(r))
	copy(out, r)
	return out
}

// Slot identifies which of the two daily duty slots a cell belongs to.
type Slot int

const (
	Primary Slot = iota
	Secondary
)

func (s Slot) String() string {
	if s == Primary {
		return "primary"
	}
	return "secondary"
}

// Index returns the position within a Roster of length 2D that holds the
// given slot's assignment for day.
func Index(slot Slot, day, d int) int {
	if slot == Primary {
		return day
	}
	return d + day
}

// DaySet is a set of day indices.
type DaySet map[int]bool

// Has reports whether day is a member; a nil DaySet is treated as empty.
func (s DaySet) Has(day int) bool {
	if s == nil {
		return false
	}
	return s[day]
}

// BoldDays holds the days, per slot, whose current cell must differ from
// the initial roster once repair has run (invariant I5).
type BoldDays struct {
	Primary   DaySet
	Secondary DaySet
}

// For returns the set governing the given slot.
func (b BoldDays) For(slot Slot) DaySet {
	if slot == Primary {
		return b.Primary
	}
	return b.Secondary
}

// UnderlinedDays holds the days, per slot, that must exactly match the
// initial roster once repair has run (invariant I4).
type UnderlinedDays struct {
	Primary   DaySet
	Secondary DaySet
}

// For returns the set governing the given slot.
func (u UnderlinedDays) For(slot Slot) DaySet {
	if slot == Primary {
		return u.Primary
	}
	return u.Secondary
}

// ErrNoCandidate is the underlying sentinel wrapped by InfeasibleRepairError.
var ErrNoCandidate = errors.New("roster: no eligible physician remains in the candidate set")

// InfeasibleRepairError reports that repair could not find any candidate
// physician for a given day/slot — the one fatal error class the core
// surfaces to its caller (spec §7, "InfeasibleRepair").
type InfeasibleRepairError struct {
	Day  int
	Slot Slot
}

func (e *InfeasibleRepairError) Error() string {
	return fmt.Sprintf("roster: no candidate available for day %d, %s slot", e.Day, e.Slot)
}

func (e *InfeasibleRepairError) Unwrap() error { return ErrNoCandidate }

// Config describes one team's immutable inputs to the roster model: the
// headcount, horizon, optional seed roster and its editability annotations.
type Config struct {
	N, D int

	// Initial is the optional pre-filled roster; nil when there is none.
	// Cells may be Unassigned.
	Initial Roster

	Bold       BoldDays
	Underlined UnderlinedDays

	// RestAfterDuty toggles invariant I3 (ENABLE_OFF_AFTER_GARDE).
	RestAfterDuty bool
}

// Model owns one team's roster data for the duration of a single solve. It
// is constructed once per team-solve and dropped afterwards (spec §3,
// "Ownership & lifecycle").
type Model struct {
	Config
	rng *rand.Rand
}

// NewModel builds a Model over cfg, using rng for every random choice made
// during repair and random-roster generation. rng is the explicit seeded
// handle threaded through roster/aco/tabu described in spec §9's design
// notes (grounded on the teacher's *rand.Rand parameters in
// internal/simulator/contest.go and distributions.go).
func NewModel(cfg Config, rng *rand.Rand) *Model {
	if cfg.Bold.Primary == nil {
		cfg.Bold.Primary = DaySet{}
	}
	if cfg.Bold.Secondary == nil {
		cfg.Bold.Secondary = DaySet{}
	}
	if cfg.Underlined.Primary == nil {
		cfg.Underlined.Primary = DaySet{}
	}
	if cfg.Underlined.Secondary == nil {
		cfg.Underlined.Secondary = DaySet{}
	}
	return &Model{Config: cfg, rng: rng}
}

// IsBold reports whether day is a bold day for slot.
func (m *Model) IsBold(slot Slot, day int) bool {
	return m.Bold.For(slot).Has(day)
}

// IsUnderlined reports whether day is an underlined day for slot.
func (m *Model) IsUnderlined(slot Slot, day int) bool {
	return m.Underlined.For(slot).Has(day)
}

// RandomPhysicianExcept draws a physician uniformly from [0, N) excluding
// every index marked true in excluded. It returns ErrNoCandidate if the
// candidate set is empty.
func (m *Model) RandomPhysicianExcept(excluded map[int]bool) (int, error) {
	candidates := make([]int, 0, m.N)
	for i := 0; i < m.N; i++ {
		if !excluded[i] {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return 0, ErrNoCandidate
	}
	return candidates[m.rng.Intn(len(candidates))], nil
}

// RandomRoster samples 2D independent uniform physicians and repairs the
// result, satisfying I1-I5 (spec §4.1).
func (m *Model) RandomRoster() (Roster, error) {
	r := make(Roster, 2*m.D)
	for i := range r {
		r[i] = m.rng.Intn(m.N)
	}
	return m.Repair(r)
}

// DetectViolation returns true if r violates any of I1-I5, checked in that
// order with short-circuit on the first violation found (spec §4.1).
func (m *Model) DetectViolation(r Roster) bool {
	// I1: every cell in [0, N).
	for _, v := range r {
		if v < 0 || v >= m.N {
			return true
		}
	}

	// I2: primary[t] != secondary[t].
	for t := 0; t < m.D; t++ {
		if r[t] == r[m.D+t] {
			return true
		}
	}

	// I3: rest after duty.
	if m.RestAfterDuty {
		for t := 1; t < m.D; t++ {
			if r[t-1] == r[t] || r[t-1] == r[m.D+t] {
				return true
			}
		}
	}

	// I4: underlined days match the initial roster.
	if m.Initial != nil {
		for d := range m.Underlined.Primary {
			if r[d] != m.Initial[d] {
				return true
			}
		}
		for d := range m.Underlined.Secondary {
			if r[m.D+d] != m.Initial[m.D+d] {
				return true
			}
		}

		// I5: bold days differ from the initial roster.
		for d := range m.Bold.Primary {
			if r[d] == m.Initial[d] {
				return true
			}
		}
		for d := range m.Bold.Secondary {
			if r[m.D+d] == m.Initial[m.D+d] {
				return true
			}
		}
	}

	return false
}

// Repair mutates r in place until it satisfies I1-I5 (or, for a residual
// I3 conflict between two underlined cells, fails open per spec §4.1 step
// 3 and §9) and returns it. The fixed order is: bold days, underlined
// days, rest-after-duty, slot disjointness.
func (m *Model) Repair(r Roster) (Roster, error) {
	m.repairBoldDays(r)
	m.repairUnderlinedDays(r)
	if err := m.repairRestAfterDuty(r); err != nil {
		return nil, err
	}
	if err := m.repairSlotDisjointness(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (m *Model) repairBoldDays(r Roster) {
	for d := range m.Bold.Primary {
		if m.Initial == nil {
			continue
		}
		if r[d] == m.Initial[d] {
			if v, err := m.RandomPhysicianExcept(map[int]bool{r[d]: true}); err == nil {
				r[d] = v
			}
		}
	}
	for d := range m.Bold.Secondary {
		if m.Initial == nil {
			continue
		}
		idx := m.D + d
		if r[idx] == m.Initial[idx] {
			if v, err := m.RandomPhysicianExcept(map[int]bool{r[idx]: true}); err == nil {
				r[idx] = v
			}
		}
	}
}

func (m *Model) repairUnderlinedDays(r Roster) {
	if m.Initial == nil {
		return
	}
	for d := range m.Underlined.Primary {
		r[d] = m.Initial[d]
	}
	for d := range m.Underlined.Secondary {
		r[m.D+d] = m.Initial[m.D+d]
	}
}

// repairRestAfterDuty enforces I3: primary[t-1] must not equal primary[t]
// (GG) or secondary[t] (GA). Each violation resamples the later cell
// unless that cell is underlined, in which case the earlier cell
// (yesterday's primary) is resampled instead; if both sides of the
// violation are underlined the conflict is left in place (spec §4.1 step
// 3, §9's ConstraintConflict resolution).
func (m *Model) repairRestAfterDuty(r Roster) error {
	if !m.RestAfterDuty {
		return nil
	}
	for t := 1; t < m.D; t++ {
		if r[t] == r[t-1] {
			if err := m.resolveRestViolation(r, t, Primary); err != nil {
				return err
			}
		}
		if r[m.D+t] == r[t-1] {
			if err := m.resolveRestViolation(r, t, Secondary); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Model) resolveRestViolation(r Roster, t int, laterSlot Slot) error {
	laterIdx := Index(laterSlot, t, m.D)

	if m.IsUnderlined(laterSlot, t) {
		// The later cell is frozen; try resampling yesterday's primary
		// instead. If that is frozen too, leave the conflict in place.
		if m.IsUnderlined(Primary, t-1) {
			return nil
		}
		excluded := map[int]bool{r[laterIdx]: true}
		if t-2 >= 0 {
			excluded[r[t-2]] = true
		}
		if m.IsBold(Primary, t-1) && m.Initial != nil {
			excluded[m.Initial[t-1]] = true
		}
		v, err := m.RandomPhysicianExcept(excluded)
		if err != nil {
			return &InfeasibleRepairError{Day: t - 1, Slot: Primary}
		}
		r[t-1] = v
		return nil
	}

	excluded := map[int]bool{r[t-1]: true}
	if t+1 < m.D {
		excluded[r[t+1]] = true
		if m.IsUnderlined(Primary, t+1) && m.Initial != nil {
			excluded[m.Initial[t+1]] = true
		}
	}
	if m.IsBold(laterSlot, t) && m.Initial != nil {
		excluded[m.Initial[laterIdx]] = true
	}
	v, err := m.RandomPhysicianExcept(excluded)
	if err != nil {
		return &InfeasibleRepairError{Day: t, Slot: laterSlot}
	}
	r[laterIdx] = v
	return nil
}

// repairSlotDisjointness enforces I2: primary[t] != secondary[t].
func (m *Model) repairSlotDisjointness(r Roster) error {
	for t := 0; t < m.D; t++ {
		if r[t] != r[m.D+t] {
			continue
		}
		excluded := map[int]bool{r[t]: true}
		if t > 0 {
			excluded[r[t-1]] = true
		}
		if m.IsBold(Secondary, t) && m.Initial != nil {
			excluded[m.Initial[m.D+t]] = true
		}
		v, err := m.RandomPhysicianExcept(excluded)
		if err != nil {
			return &InfeasibleRepairError{Day: t, Slot: Secondary}
		}
		r[m.D+t] = v
	}
	return nil
}

// Distance is the Hamming count over positions where rRef is defined
// (cells holding Unassigned in rRef are ignored).
func (m *Model) Distance(r, rRef Roster) int {
	if rRef == nil {
		return 0
	}
	d := 0
	for i := 0; i < len(r) && i < len(rRef); i++ {
		if rRef[i] == Unassigned {
			continue
		}
		if r[i] != rRef[i] {
			d++
		}
	}
	return d
}

// CountUnassigned returns the number of Unassigned cells in r.
func CountUnassigned(r Roster) int {
	n := 0
	for _, v := range r {
		if v == Unassigned {
			n++
		}
	}
	return n
}
