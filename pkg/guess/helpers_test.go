package guess

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/matzehuels/pcfguess/pkg/grammar"
)

// catDogIndex is the (word)(number) grammar used throughout the tests:
// cat1 0.21, dog1 0.14, cat2 0.09, dog2 0.06.
func catDogIndex(t testing.TB) *grammar.Index {
	t.Helper()
	rule, err := grammar.NewRule("(word)(number)", 0.5)
	if err != nil {
		t.Fatal(err)
	}
	ix, err := grammar.New([]grammar.Rule{rule}, map[string][]grammar.Terminal{
		"word":   {{Word: "cat", Prob: 0.6}, {Word: "dog", Prob: 0.4}},
		"number": {{Word: "1", Prob: 0.7}, {Word: "2", Prob: 0.3}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return ix
}

// randomIndex builds a grammar whose words are unique per (tag, index),
// so a decoded guess identifies its lattice point within a rule. With
// ties set, probabilities come from a small set of values so that many
// points share a probability.
func randomIndex(t testing.TB, seed int64, ties bool) *grammar.Index {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))

	tags := []string{"alpha", "beta", "number", "special", "gamma"}
	terms := make(map[string][]grammar.Terminal, len(tags))
	for _, tag := range tags {
		n := 1 + rng.Intn(5)
		list := make([]grammar.Terminal, n)
		p := 1.0
		for i := range list {
			if ties {
				p = []float64{0.5, 0.25, 0.125}[rng.Intn(3)]
				if i > 0 && p > list[i-1].Prob {
					p = list[i-1].Prob
				}
			} else {
				p *= 0.3 + 0.7*rng.Float64()
			}
			list[i] = grammar.Terminal{Word: fmt.Sprintf("<%s%d>", tag, i), Prob: p}
		}
		terms[tag] = list
	}

	var rules []grammar.Rule
	for r := 0; r < 4; r++ {
		n := 1 + rng.Intn(4)
		picked := make([]string, n)
		for i := range picked {
			picked[i] = tags[rng.Intn(len(tags))]
		}
		prob := 0.1 + 0.9*rng.Float64()
		if ties {
			prob = 0.5
		}
		rule, err := grammar.NewRule(grammar.FormatStructure(picked), prob)
		if err != nil {
			t.Fatal(err)
		}
		rules = append(rules, rule)
	}

	ix, err := grammar.New(rules, terms)
	if err != nil {
		t.Fatal(err)
	}
	return ix
}

// latticeSize returns the number of points of every rule.
func latticeSize(t testing.TB, ix *grammar.Index) []int {
	t.Helper()
	sizes := make([]int, len(ix.Rules()))
	for i, r := range ix.Rules() {
		sizes[i] = 1
		for _, tag := range r.Tags {
			list, err := ix.Terminals(tag)
			if err != nil {
				t.Fatal(err)
			}
			sizes[i] *= len(list)
		}
	}
	return sizes
}

// collect runs a generator and returns every emitted record.
func collect(t testing.TB, ix *grammar.Index, opts Options) ([]Record, Summary) {
	t.Helper()
	g, err := NewGenerator(ix, opts)
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	var recs []Record
	sum, err := g.Run(context.Background(), SinkFunc(func(r Record) error {
		recs = append(recs, r)
		return nil
	}))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return recs, sum
}

func strategies() []Strategy {
	return []Strategy{PivotForward{}, LowestProbabilityParent{}}
}
