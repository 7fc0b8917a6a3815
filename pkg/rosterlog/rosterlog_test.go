package rosterlog

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInit_ParsesLevelAndSelectsFormatter(t *testing.T) {
	l := Init("debug", true)
	assert.Equal(t, logrus.DebugLevel, l.Level)
	_, isText := l.Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)

	Init("info", false)
	_, isJSON := Get().Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON)
}

func TestInit_InvalidLevelLeavesLevelUnchanged(t *testing.T) {
	Init("info", true)
	before := Get().Level
	Init("not-a-level", true)
	assert.Equal(t, before, Get().Level)
}

func TestGet_ReturnsPackageLogger(t *testing.T) {
	assert.Same(t, base, Get())
}

func TestWithTeam_SetsTeamIndexField(t *testing.T) {
	entry := WithTeam(2)
	assert.Equal(t, 2, entry.Data["team_index"])
}

func TestWithSolve_SetsTeamIndexAndPhase(t *testing.T) {
	entry := WithSolve(1, "aco")
	assert.Equal(t, 1, entry.Data["team_index"])
	assert.Equal(t, "aco", entry.Data["phase"])
}

func TestWithIteration_AddsIterationToExistingEntry(t *testing.T) {
	entry := WithIteration(WithSolve(0, "tabu"), 7)
	assert.Equal(t, 0, entry.Data["team_index"])
	assert.Equal(t, "tabu", entry.Data["phase"])
	assert.Equal(t, 7, entry.Data["iteration"])
}
