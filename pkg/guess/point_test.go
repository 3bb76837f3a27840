package guess

import (
	"math"
	"testing"

	"github.com/matzehuels/pcfguess/pkg/errors"
)

func TestSeed(t *testing.T) {
	ix := catDogIndex(t)
	p, err := Seed(ix, 0)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if p.Len() != 2 || p.Pivot() != 0 {
		t.Errorf("Len/Pivot = %d/%d, want 2/0", p.Len(), p.Pivot())
	}
	if got := p.Indices(); got[0] != 0 || got[1] != 0 {
		t.Errorf("Indices = %v, want [0 0]", got)
	}
	if math.Abs(p.Probability()-0.21) > 1e-12 {
		t.Errorf("Probability = %v, want 0.21", p.Probability())
	}
	if p.Rule().Structure != "(word)(number)" || p.RuleIndex() != 0 {
		t.Errorf("Rule = %q/%d", p.Rule().Structure, p.RuleIndex())
	}
	if p.Terminal(0).Word != "cat" || p.Terminal(1).Word != "1" {
		t.Errorf("Terminals = %q %q", p.Terminal(0).Word, p.Terminal(1).Word)
	}

	for _, bad := range []int{-1, 1} {
		if _, err := Seed(ix, bad); !errors.Is(err, errors.ErrCodeInvalidConfig) {
			t.Errorf("Seed(%d) error = %v, want INVALID_CONFIG", bad, err)
		}
	}
}

func TestPointAdvance(t *testing.T) {
	seed, err := Seed(catDogIndex(t), 0)
	if err != nil {
		t.Fatal(err)
	}

	a := seed.withPivot(1).Advance(0)
	if got := a.Indices(); got[0] != 1 || got[1] != 0 {
		t.Errorf("Indices = %v, want [1 0]", got)
	}
	if a.Pivot() != 1 {
		t.Errorf("Pivot = %d, want 1 (copied from parent)", a.Pivot())
	}
	if math.Abs(a.Probability()-0.14) > 1e-12 {
		t.Errorf("Probability = %v, want 0.14", a.Probability())
	}
	if got := seed.Indices(); got[0] != 0 {
		t.Errorf("Advance modified its receiver: %v", got)
	}
	if a.String() != "(word)(number)[1 0]" {
		t.Errorf("String = %q", a.String())
	}

	idx := a.Indices()
	idx[0] = 99
	if a.Indices()[0] != 1 {
		t.Error("Indices did not return a copy")
	}

	if a.CanAdvance(0) {
		t.Error("CanAdvance(0) = true at the last terminal")
	}
	if !a.CanAdvance(1) {
		t.Error("CanAdvance(1) = false with a terminal left")
	}

	defer func() {
		if recover() == nil {
			t.Error("Advance past the end did not panic")
		}
	}()
	a.Advance(0)
}

func TestPointLogProbabilityMonotone(t *testing.T) {
	ix := randomIndex(t, 7, false)
	for r := range ix.Rules() {
		p, err := Seed(ix, r)
		if err != nil {
			t.Fatal(err)
		}
		var walk func(p Point, c int)
		walk = func(p Point, c int) {
			for i := c; i < p.Len(); i++ {
				if !p.CanAdvance(i) {
					continue
				}
				q := p.Advance(i)
				if q.LogProbability() > p.LogProbability() {
					t.Fatalf("%s more probable than its parent %s", q, p)
				}
				walk(q, i)
			}
		}
		walk(p, 0)
	}
}
