package guess

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/pcfguess/pkg/errors"
	"github.com/matzehuels/pcfguess/pkg/grammar"
)

// lattice is a rule resolved against an index: the rule's terminal lists
// looked up once so points can refer to terminals by integer index.
type lattice struct {
	index int
	rule  grammar.Rule
	lists [][]grammar.Terminal
	logs  [][]float64
	base  float64
	gaps  []bool
}

func newLattice(ix *grammar.Index, index int, r grammar.Rule) (*lattice, error) {
	l := &lattice{
		index: index,
		rule:  r,
		lists: make([][]grammar.Terminal, len(r.Tags)),
		logs:  make([][]float64, len(r.Tags)),
		base:  math.Log(r.Prob),
		gaps:  make([]bool, len(r.Tags)),
	}
	for i, tag := range r.Tags {
		list, err := ix.Terminals(tag)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnknownTag, err, "rule %q", r.Structure)
		}
		logs, err := ix.LogProbs(tag)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnknownTag, err, "rule %q", r.Structure)
		}
		l.lists[i] = list
		l.logs[i] = logs
		l.gaps[i] = IsGap(tag)
	}
	return l, nil
}

// logProb sums the log-probabilities of indices in ascending coordinate
// order. Every caller goes through here so equal vectors give equal sums.
func (l *lattice) logProb(indices []int) float64 {
	p := l.base
	for i, k := range indices {
		p += l.logs[i][k]
	}
	return p
}

// prob multiplies the rule probability by the terminal probabilities of
// indices in ascending coordinate order. Thresholds and reported
// probabilities use this product so they match it exactly.
func (l *lattice) prob(indices []int) float64 {
	p := l.rule.Prob
	for i, k := range indices {
		p *= l.lists[i][k].Prob
	}
	return p
}

// logProbDec is logProb of indices with coordinate j decremented by one.
func (l *lattice) logProbDec(indices []int, j int) float64 {
	p := l.base
	for i, k := range indices {
		if i == j {
			k--
		}
		p += l.logs[i][k]
	}
	return p
}

func (l *lattice) seed() Point {
	indices := make([]int, len(l.lists))
	return l.point(indices, 0)
}

func (l *lattice) point(indices []int, pivot int) Point {
	return Point{lat: l, indices: indices, pivot: pivot, prob: l.prob(indices), logp: l.logProb(indices)}
}

// Point is one fully instantiated guess: a rule plus one terminal index per
// tag. Points are immutable; Advance returns a new point.
type Point struct {
	lat     *lattice
	indices []int
	pivot   int
	prob    float64
	logp    float64
}

// Seed returns the most probable point of rule i of ix: every index zero,
// pivot zero.
func Seed(ix *grammar.Index, rule int) (Point, error) {
	rules := ix.Rules()
	if rule < 0 || rule >= len(rules) {
		return Point{}, errors.New(errors.ErrCodeInvalidConfig, "rule index %d out of range [0,%d)", rule, len(rules))
	}
	l, err := newLattice(ix, rule, rules[rule])
	if err != nil {
		return Point{}, err
	}
	return l.seed(), nil
}

// Rule returns the rule the point instantiates.
func (p Point) Rule() grammar.Rule { return p.lat.rule }

// RuleIndex returns the position of the point's rule in the index.
func (p Point) RuleIndex() int { return p.lat.index }

// Pivot returns the point's pivot coordinate.
func (p Point) Pivot() int { return p.pivot }

// Len returns the number of coordinates (tags in the rule).
func (p Point) Len() int { return len(p.indices) }

// Indices returns a copy of the terminal index per coordinate.
func (p Point) Indices() []int { return slices.Clone(p.indices) }

// Terminal returns the terminal selected at coordinate i.
func (p Point) Terminal(i int) grammar.Terminal {
	return p.lat.lists[i][p.indices[i]]
}

// LogProbability returns the natural log of the point's probability,
// summed per factor. It stays finite where Probability underflows.
func (p Point) LogProbability() float64 { return p.logp }

// Probability returns rule probability times every selected terminal
// probability. It is zero for rules long enough to underflow.
func (p Point) Probability() float64 { return p.prob }

// CanAdvance reports whether coordinate c has a next terminal.
func (p Point) CanAdvance(c int) bool {
	return p.indices[c]+1 < len(p.lat.lists[c])
}

// Advance returns a copy of p with coordinate c moved to the next, less
// probable terminal. The pivot is copied unchanged. Callers must check
// CanAdvance first; advancing past the end panics.
func (p Point) Advance(c int) Point {
	if !p.CanAdvance(c) {
		panic(fmt.Sprintf("guess: advance coordinate %d past end of %q", c, p.lat.rule.Tags[c]))
	}
	indices := slices.Clone(p.indices)
	indices[c]++
	return p.lat.point(indices, p.pivot)
}

func (p Point) withPivot(k int) Point {
	p.pivot = k
	return p
}

// String renders the point as "structure[i0 i1 ...]" for debugging.
func (p Point) String() string {
	var b strings.Builder
	b.WriteString(p.lat.rule.Structure)
	b.WriteByte('[')
	for i, k := range p.indices {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", k)
	}
	b.WriteByte(']')
	return b.String()
}
