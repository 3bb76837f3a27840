// Package grammar holds the read-only probabilistic grammar that guesses
// are enumerated from.
//
// # Overview
//
// A grammar is a list of [Rule] values (base structures) and, for every tag
// a structure references, a list of [Terminal] values sorted by
// non-increasing probability. A rule such as
//
//	(alpha)(number)	0.25
//
// produces every concatenation of one alpha terminal and one number
// terminal, weighted by 0.25 times both terminal probabilities.
//
// # Index
//
// [Index] is built once with [New] or [LoadDir] and never mutated
// afterwards, so it can be shared by concurrent readers. Construction
// checks that every tag a rule references has a non-empty, sorted terminal
// list; the enumeration engine relies on that ordering and never re-sorts.
//
// # On-disk layout
//
// [LoadDir] reads the layout produced by the training tools:
//
//	grammar/
//	  rules.txt              structure<TAB>probability
//	  nonterminals/
//	    alpha.txt            word<TAB>probability
//	    number.txt
//
// # Errors
//
// Lookups and construction return coded errors from
// [github.com/matzehuels/pcfguess/pkg/errors]: UNKNOWN_TAG for a missing
// terminal list, MALFORMED_STRUCTURE for a bad structure string and
// INVALID_GRAMMAR for inconsistent probabilities or unreadable files.
package grammar
