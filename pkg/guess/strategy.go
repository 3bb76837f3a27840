package guess

import (
	"strings"

	"github.com/matzehuels/pcfguess/pkg/errors"
)

// Strategy names accepted by StrategyByName.
const (
	StrategyPivotForward            = "pivot-forward"
	StrategyLowestProbabilityParent = "lowest-probability-parent"
)

// Strategy generates the children of a popped point such that every
// lattice point is generated by exactly one parent.
type Strategy interface {
	// Name returns the configuration name of the strategy.
	Name() string

	// Expand appends to dst the children of p whose probability is at
	// least minProb and returns the extended slice.
	Expand(p Point, minProb float64, dst []Point) []Point
}

// PivotForward advances only coordinates at or after the point's pivot and
// gives each child the advanced coordinate as its pivot. A point is thus
// generated only along its non-decreasing sequence of coordinate
// increments, which is unique.
type PivotForward struct{}

// Name implements Strategy.
func (PivotForward) Name() string { return StrategyPivotForward }

// Expand implements Strategy.
func (PivotForward) Expand(p Point, minProb float64, dst []Point) []Point {
	for i := p.pivot; i < len(p.indices); i++ {
		if !p.CanAdvance(i) {
			continue
		}
		c := p.Advance(i).withPivot(i)
		if c.prob < minProb {
			continue
		}
		dst = append(dst, c)
	}
	return dst
}

// LowestProbabilityParent advances every coordinate but keeps a child only
// if the popped point is the least probable of the child's parents (the
// points one decrement away). Among equally probable parents the one
// reached by decrementing the lowest coordinate wins. The check costs
// O(N^2) per point for a rule of N tags.
type LowestProbabilityParent struct{}

// Name implements Strategy.
func (LowestProbabilityParent) Name() string { return StrategyLowestProbabilityParent }

// Expand implements Strategy.
func (LowestProbabilityParent) Expand(p Point, minProb float64, dst []Point) []Point {
	for i := range p.indices {
		if !p.CanAdvance(i) {
			continue
		}
		c := p.Advance(i).withPivot(i)
		if c.prob < minProb {
			continue
		}
		if isLowestParent(c, p.logp, i) {
			dst = append(dst, c)
		}
	}
	return dst
}

// isLowestParent reports whether the parent of c reached by decrementing
// coordinate i, with log-probability parent, is c's legitimate parent.
func isLowestParent(c Point, parent float64, i int) bool {
	for j, k := range c.indices {
		if j == i || k == 0 {
			continue
		}
		other := c.lat.logProbDec(c.indices, j)
		if other < parent {
			return false
		}
		if other == parent && j < i {
			return false
		}
	}
	return true
}

// StrategyByName returns the strategy registered under name. The legacy
// names "next" and "deadbeat" are accepted as aliases.
func StrategyByName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyPivotForward, "next":
		return PivotForward{}, nil
	case StrategyLowestProbabilityParent, "deadbeat":
		return LowestProbabilityParent{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig,
		"unknown algorithm %q (must be one of: %s)", name, strings.Join(StrategyNames(), ", "))
}

// StrategyNames lists the canonical strategy names.
func StrategyNames() []string {
	return []string{StrategyPivotForward, StrategyLowestProbabilityParent}
}

var (
	_ Strategy = PivotForward{}
	_ Strategy = LowestProbabilityParent{}
)
