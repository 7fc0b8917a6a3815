// Package rosterlog wraps logrus the way shared/pkg/logger does: a
// package-level configurable logger plus typed constructors for the
// fields each call site needs, instead of ad hoc logrus.Fields literals
// scattered through the solver.
package rosterlog

import (
	"os"

	"github.com/sirupsen/logrus"
)

var base = logrus.New()

func init() {
	base.SetOutput(os.Stderr)
	base.SetLevel(logrus.InfoLevel)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// Init configures the package logger's level and output formatter.
// isDevelopment selects a human-readable text formatter; otherwise JSON is
// used, matching shared/pkg/logger.InitLogger's environment switch.
func Init(level string, isDevelopment bool) *logrus.Logger {
	if lvl, err := logrus.ParseLevel(level); err == nil {
		base.SetLevel(lvl)
	}
	if isDevelopment {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		base.SetFormatter(&logrus.JSONFormatter{})
	}
	return base
}

// Get returns the package logger.
func Get() *logrus.Logger {
	return base
}

// WithTeam scopes a logger to one team's solve within a multi-team run.
func WithTeam(teamIndex int) *logrus.Entry {
	return base.WithFields(logrus.Fields{"team_index": teamIndex})
}

// WithSolve scopes a logger to a single phase (aco/tabu) of one team's
// solve, mirroring shared/pkg/logger.WithOptimizationContext.
func WithSolve(teamIndex int, phase string) *logrus.Entry {
	return base.WithFields(logrus.Fields{
		"team_index": teamIndex,
		"phase":      phase,
	})
}

// WithIteration adds an iteration number to an existing solve-scoped entry.
func WithIteration(entry *logrus.Entry, iteration int) *logrus.Entry {
	return entry.WithField("iteration", iteration)
}
