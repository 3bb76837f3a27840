package guess_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/pcfguess/pkg/grammar"
	"github.com/matzehuels/pcfguess/pkg/guess"
)

func Example() {
	rule, _ := grammar.NewRule("(word)(number)", 0.5)
	ix, _ := grammar.New([]grammar.Rule{rule}, map[string][]grammar.Terminal{
		"word":   {{Word: "cat", Prob: 0.6}, {Word: "dog", Prob: 0.4}},
		"number": {{Word: "1", Prob: 0.7}, {Word: "2", Prob: 0.3}},
	})

	gen, _ := guess.NewGenerator(ix, guess.Options{})
	gen.Run(context.Background(), guess.SinkFunc(func(r guess.Record) error {
		fmt.Printf("%s %.2f\n", r.Guess, r.Probability)
		return nil
	}))
	// Output:
	// cat1 0.21
	// dog1 0.14
	// cat2 0.09
	// dog2 0.06
}

func ExampleMangle() {
	rule, _ := grammar.NewRule("(word)(number)", 1)
	ix, _ := grammar.New([]grammar.Rule{rule}, map[string][]grammar.Terminal{
		"word":   {{Word: "cat", Prob: 1}},
		"number": {{Word: "1", Prob: 1}},
	})
	p, _ := guess.Seed(ix, 0)
	fmt.Println(guess.Mangle(p))
	// Output: [cat1 CAT1 Cat1]
}
