package grammar

import (
	"math"
	"math/big"
	"sort"

	"github.com/matzehuels/pcfguess/pkg/errors"
)

// Terminal is one word a tag can expand to, with its probability in (0,1].
type Terminal struct {
	Word string
	Prob float64
}

// Rule is a base structure: an ordered sequence of tags and the
// probability of choosing that structure.
type Rule struct {
	// Structure is the notation as written in rules.txt, e.g. "(alpha)(number)".
	Structure string
	// Tags is Structure parsed into tag names.
	Tags []string
	// Prob is the structure probability in (0,1].
	Prob float64
}

// NewRule parses structure and returns the rule.
// Every tag must pass [errors.ValidateTag] and prob must be in (0,1].
func NewRule(structure string, prob float64) (Rule, error) {
	tags, err := ParseStructure(structure)
	if err != nil {
		return Rule{}, err
	}
	for _, t := range tags {
		if err := errors.ValidateTag(t); err != nil {
			return Rule{}, err
		}
	}
	if !validProb(prob) {
		return Rule{}, errors.New(errors.ErrCodeInvalidGrammar, "rule %q: probability %v outside (0,1]", structure, prob)
	}
	return Rule{Structure: structure, Tags: tags, Prob: prob}, nil
}

// Index is the read-only lookup from tags to terminal lists plus the rule
// list. It is safe for concurrent use once constructed.
type Index struct {
	rules     []Rule
	terminals map[string][]Terminal
	logs      map[string][]float64
}

// New builds an index from rules and per-tag terminal lists.
//
// It fails with UNKNOWN_TAG if a rule references a tag missing from
// terminals, and with INVALID_GRAMMAR if a referenced list is empty, holds
// a probability outside (0,1] or is not sorted by non-increasing
// probability. Tags no rule references are kept but not checked.
//
// The index keeps the given slices; callers must not modify them afterwards.
func New(rules []Rule, terminals map[string][]Terminal) (*Index, error) {
	ix := &Index{
		rules:     rules,
		terminals: terminals,
		logs:      make(map[string][]float64, len(terminals)),
	}

	for _, r := range rules {
		if !validProb(r.Prob) {
			return nil, errors.New(errors.ErrCodeInvalidGrammar, "rule %q: probability %v outside (0,1]", r.Structure, r.Prob)
		}
		for _, tag := range r.Tags {
			if _, ok := ix.logs[tag]; ok {
				continue
			}
			list, ok := terminals[tag]
			if !ok {
				return nil, errors.New(errors.ErrCodeUnknownTag, "rule %q references unknown tag %q", r.Structure, tag)
			}
			logs, err := checkTerminals(tag, list)
			if err != nil {
				return nil, err
			}
			ix.logs[tag] = logs
		}
	}
	return ix, nil
}

func checkTerminals(tag string, list []Terminal) ([]float64, error) {
	if len(list) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidGrammar, "tag %q has no terminals", tag)
	}
	logs := make([]float64, len(list))
	for i, t := range list {
		if !validProb(t.Prob) {
			return nil, errors.New(errors.ErrCodeInvalidGrammar, "tag %q: terminal %q probability %v outside (0,1]", tag, t.Word, t.Prob)
		}
		if i > 0 && t.Prob > list[i-1].Prob {
			return nil, errors.New(errors.ErrCodeInvalidGrammar, "tag %q: terminals not sorted by probability at %q (%v > %v)", tag, t.Word, t.Prob, list[i-1].Prob)
		}
		logs[i] = math.Log(t.Prob)
	}
	return logs, nil
}

func validProb(p float64) bool {
	return p > 0 && p <= 1
}

// Rules returns the rules in load order. The slice is shared; do not modify.
func (ix *Index) Rules() []Rule {
	return ix.rules
}

// Terminals returns the probability-sorted terminal list for tag.
// The slice is shared; do not modify.
func (ix *Index) Terminals(tag string) ([]Terminal, error) {
	list, ok := ix.terminals[tag]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownTag, "unknown tag %q", tag)
	}
	return list, nil
}

// LogProbs returns math.Log of every terminal probability of tag, in the
// same order as [Index.Terminals]. Only tags referenced by a rule are
// available.
func (ix *Index) LogProbs(tag string) ([]float64, error) {
	logs, ok := ix.logs[tag]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownTag, "unknown tag %q", tag)
	}
	return logs, nil
}

// Tags returns every tag with a terminal list, sorted by name.
func (ix *Index) Tags() []string {
	tags := make([]string, 0, len(ix.terminals))
	for t := range ix.terminals {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Stats summarizes the size of the guess space an index describes.
type Stats struct {
	Rules     int
	Tags      int
	Terminals int
	// Candidates is the number of lattice points over all rules
	// (sum of the products of terminal list sizes).
	Candidates *big.Int
	// MaxProbability and MinProbability bound the probability of any
	// single guess: the best point of the best rule and the worst point
	// of the worst rule.
	MaxProbability float64
	MinProbability float64
}

// Stats computes size statistics. It walks every rule once.
func (ix *Index) Stats() Stats {
	s := Stats{
		Rules:      len(ix.rules),
		Tags:       len(ix.terminals),
		Candidates: new(big.Int),
	}
	for _, list := range ix.terminals {
		s.Terminals += len(list)
	}
	if len(ix.rules) == 0 {
		return s
	}

	maxLog, minLog := math.Inf(-1), math.Inf(1)
	for _, r := range ix.rules {
		size := big.NewInt(1)
		hi, lo := math.Log(r.Prob), math.Log(r.Prob)
		for _, tag := range r.Tags {
			logs := ix.logs[tag]
			size.Mul(size, big.NewInt(int64(len(logs))))
			hi += logs[0]
			lo += logs[len(logs)-1]
		}
		s.Candidates.Add(s.Candidates, size)
		maxLog = math.Max(maxLog, hi)
		minLog = math.Min(minLog, lo)
	}
	s.MaxProbability = math.Exp(maxLog)
	s.MinProbability = math.Exp(minLog)
	return s
}
