package roster

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, cfg Config) *Model {
	t.Helper()
	return NewModel(cfg, rand.New(rand.NewSource(1)))
}

func TestRandomRoster_SatisfiesInvariants(t *testing.T) {
	m := newTestModel(t, Config{N: 5, D: 10, RestAfterDuty: true})
	for i := 0; i < 50; i++ {
		r, err := m.RandomRoster()
		require.NoError(t, err)
		assert.False(t, m.DetectViolation(r), "iteration %d: %v", i, r)
	}
}

func TestRepair_BoldDayForcesChange(t *testing.T) {
	initial := Roster{0, 0, 1, 1}
	m := newTestModel(t, Config{
		N:       2,
		D:       2,
		Initial: initial,
		Bold:    BoldDays{Primary: DaySet{0: true}},
	})
	r := initial.Clone()
	repaired, err := m.Repair(r)
	require.NoError(t, err)
	assert.NotEqual(t, initial[0], repaired[0], "bold day 0 primary must differ from the initial roster")
}

func TestRepair_UnderlinedDayIsPreserved(t *testing.T) {
	initial := Roster{0, 1, 1, 0}
	m := newTestModel(t, Config{
		N:          2,
		D:          2,
		Initial:    initial,
		Underlined: UnderlinedDays{Primary: DaySet{1: true}},
	})
	r := Roster{1, 0, 0, 1}
	repaired, err := m.Repair(r)
	require.NoError(t, err)
	assert.Equal(t, initial[1], repaired[1])
}

func TestRepair_RestAfterDuty(t *testing.T) {
	m := newTestModel(t, Config{N: 3, D: 3, RestAfterDuty: true})
	r := Roster{0, 0, 1, 2, 1, 0}
	repaired, err := m.Repair(r)
	require.NoError(t, err)
	for t2 := 1; t2 < 3; t2++ {
		assert.NotEqual(t, repaired[t2-1], repaired[t2], "primary[%d] must rest the day after primary[%d]", t2, t2-1)
		assert.NotEqual(t, repaired[t2-1], repaired[3+t2], "secondary[%d] must not double-book yesterday's primary", t2)
	}
}

func TestRepair_SlotDisjointness(t *testing.T) {
	m := newTestModel(t, Config{N: 4, D: 2})
	r := Roster{1, 1, 1, 2}
	repaired, err := m.Repair(r)
	require.NoError(t, err)
	for d := 0; d < 2; d++ {
		assert.NotEqual(t, repaired[d], repaired[2+d])
	}
}

func TestRepair_FailOpenOnDoubleUnderlinedConflict(t *testing.T) {
	// Day 0 and day 1 primaries are both underlined to the same
	// physician, which violates I3 by construction; repair must leave it
	// in place rather than breaking I4.
	initial := Roster{0, 0, 1, 1}
	m := newTestModel(t, Config{
		N:             2,
		D:             2,
		Initial:       initial,
		Underlined:    UnderlinedDays{Primary: DaySet{0: true, 1: true}},
		RestAfterDuty: true,
	})
	r := Roster{1, 1, 0, 0}
	repaired, err := m.Repair(r)
	require.NoError(t, err)
	assert.Equal(t, initial[0], repaired[0])
	assert.Equal(t, initial[1], repaired[1])
}

func TestDetectViolation_UnassignedCellIsInvalid(t *testing.T) {
	m := newTestModel(t, Config{N: 2, D: 1})
	assert.True(t, m.DetectViolation(Roster{Unassigned, 0}))
}

func TestDistance_IgnoresUnassignedReferenceCells(t *testing.T) {
	m := newTestModel(t, Config{N: 3, D: 2})
	ref := Roster{Unassigned, 1, 0, Unassigned}
	candidate := Roster{2, 1, 0, 2}
	assert.Equal(t, 0, m.Distance(candidate, ref))
	candidate[1] = 0
	assert.Equal(t, 1, m.Distance(candidate, ref))
}

func TestRandomPhysicianExcept_ErrorsWhenExhausted(t *testing.T) {
	m := newTestModel(t, Config{N: 2, D: 1})
	_, err := m.RandomPhysicianExcept(map[int]bool{0: true, 1: true})
	assert.ErrorIs(t, err, ErrNoCandidate)
}
