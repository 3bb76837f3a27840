// Package guess enumerates the guesses of a probabilistic grammar in
// non-increasing probability order.
//
// # Lattice
//
// Each rule with N tags spans an N-dimensional lattice: a [Point] picks one
// index into every tag's terminal list. Because terminal lists are sorted
// by non-increasing probability, advancing any coordinate never raises a
// point's probability, so the most probable point of a rule is the
// all-zero point and every other point is reachable from it by single
// coordinate increments.
//
// # Enumeration
//
// A [Generator] seeds a max-priority [Frontier] with the all-zero point of
// every rule and repeatedly pops the most probable point, pushes its
// children and emits its surface strings. Only the frontier is ever held
// in memory.
//
// A point usually has several potential parents, one per non-zero
// coordinate. A [Strategy] decides which single parent generates it, so
// that every point is pushed exactly once with no record of visited
// points:
//
//   - [PivotForward] only advances coordinates at or after the point's
//     pivot, so each point is produced along the unique non-decreasing
//     sequence of coordinate increments.
//   - [LowestProbabilityParent] advances any coordinate but only keeps a
//     child when the popping point is the least probable of the child's
//     parents, ties going to the lower coordinate.
//
// # Probabilities
//
// Probabilities are compared as sums of logarithms evaluated in ascending
// coordinate order. The sum is deterministic for a given index vector,
// monotone under coordinate increments and does not underflow for long
// structures; [Point.Probability] converts back for display.
//
// # Variants
//
// With mangling enabled, [Mangler] turns a point into up to four letter
// case variants of its decoded string. Tags named number*, special* and
// char* are gaps and keep their case.
//
// # Usage
//
//	g, err := guess.NewGenerator(ix, guess.Options{Limit: 1000, Mangle: true})
//	if err != nil {
//	    return err
//	}
//	summary, err := g.Run(ctx, guess.SinkFunc(func(r guess.Record) error {
//	    fmt.Println(r.Guess)
//	    return nil
//	}))
package guess
