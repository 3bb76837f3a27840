package guess

import (
	"testing"

	"github.com/matzehuels/pcfguess/pkg/grammar"
)

func TestFrontierOrder(t *testing.T) {
	seed, err := Seed(catDogIndex(t), 0)
	if err != nil {
		t.Fatal(err)
	}
	dog1 := seed.Advance(0)
	cat2 := seed.Advance(1)
	dog2 := dog1.Advance(1)

	f := NewFrontier()
	if !f.Empty() {
		t.Fatal("new frontier not empty")
	}
	for _, p := range []Point{cat2, dog2, seed, dog1} {
		f.Push(p)
	}
	if f.Size() != 4 {
		t.Fatalf("Size = %d, want 4", f.Size())
	}

	want := []string{"cat1", "dog1", "cat2", "dog2"}
	for i, w := range want {
		p, ok := f.Pop()
		if !ok {
			t.Fatalf("Pop %d: empty", i)
		}
		if got := Decode(p); got != w {
			t.Errorf("Pop %d = %q, want %q", i, got, w)
		}
	}
	if _, ok := f.Pop(); ok {
		t.Error("Pop on empty frontier returned a point")
	}
}

func TestFrontierTiesPopInPushOrder(t *testing.T) {
	rule, _ := grammar.NewRule("(word)", 1)
	ix, err := grammar.New([]grammar.Rule{rule}, map[string][]grammar.Terminal{
		"word": {{Word: "a", Prob: 0.25}, {Word: "b", Prob: 0.25}, {Word: "c", Prob: 0.25}, {Word: "d", Prob: 0.25}},
	})
	if err != nil {
		t.Fatal(err)
	}
	a, _ := Seed(ix, 0)
	b := a.Advance(0)
	c := b.Advance(0)
	d := c.Advance(0)

	f := NewFrontier()
	for _, p := range []Point{c, a, d, b} {
		f.Push(p)
	}
	var got string
	for !f.Empty() {
		p, _ := f.Pop()
		got += Decode(p)
	}
	if got != "cadb" {
		t.Errorf("pop order = %q, want %q", got, "cadb")
	}
}
