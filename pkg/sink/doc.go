// Package sink provides the output destinations of a guess run.
//
// A sink receives [guess.Record] values in emission order through the
// [guess.Sink] interface. Two implementations are provided:
//
//   - [Writer] writes one guess per line to an [io.Writer], buffered
//   - [Redis] appends guesses to a Redis list in batches
//
// Both buffer output; callers must call Close (or Flush) once the run
// finishes so the tail of the run is not lost.
//
// # Line Format
//
// By default a line is the guess alone. With probabilities enabled the
// line is
//
//	<guess>\t<probability>\t<structure>
//
// where the probability is printed with six significant digits in the
// shortest of plain or exponent notation.
package sink
