package guess

import (
	"context"
	"io"
	"math"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/pcfguess/pkg/errors"
	"github.com/matzehuels/pcfguess/pkg/grammar"
	"github.com/matzehuels/pcfguess/pkg/observability"
)

const (
	// DefaultProgressEvery is the emission cadence of progress reports.
	DefaultProgressEvery = 1_000_000

	// cancelCheckEvery is how many pops pass between context checks.
	cancelCheckEvery = 4096
)

// Options configures a Generator.
type Options struct {
	// Strategy selects the duplicate-avoidance expansion. Defaults to
	// PivotForward.
	Strategy Strategy

	// Mangle emits letter case variants instead of the plain decode.
	Mangle bool

	// Limit stops the run after this many emitted guesses. 0 means no limit.
	Limit int64

	// MinLength drops guesses shorter than this many characters. Dropped
	// guesses do not count toward Limit.
	MinLength int

	// MinProbability prunes points whose probability, the product of the
	// rule and terminal probabilities, is below this value.
	MinProbability float64

	// ProgressEvery is the number of emissions between progress reports.
	// Defaults to DefaultProgressEvery.
	ProgressEvery int64

	// Logger receives progress and summary lines. Defaults to a discard
	// logger.
	Logger *log.Logger

	// RunID names runs in logs and hooks. A random UUID is generated per
	// run when empty.
	RunID string
}

// Validate rejects options the run loop cannot honor.
func (o *Options) Validate() error {
	if o.Limit < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "limit must not be negative (got %d)", o.Limit)
	}
	if o.MinLength < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "minimum length must not be negative (got %d)", o.MinLength)
	}
	if math.IsNaN(o.MinProbability) || o.MinProbability < 0 || o.MinProbability > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "minimum probability must be in [0,1] (got %v)", o.MinProbability)
	}
	if o.ProgressEvery < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "progress interval must not be negative (got %d)", o.ProgressEvery)
	}
	return nil
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.Strategy == nil {
		o.Strategy = PivotForward{}
	}
	if o.ProgressEvery == 0 {
		o.ProgressEvery = DefaultProgressEvery
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Record is one emitted guess.
type Record struct {
	Guess       string
	Probability float64
	// Rule is the structure string of the originating rule.
	Rule      string
	RuleIndex int
}

// Sink receives emitted records in order. A non-nil error stops the run.
type Sink interface {
	Emit(Record) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Record) error

// Emit implements Sink.
func (f SinkFunc) Emit(r Record) error { return f(r) }

// Summary reports what a run did.
type Summary struct {
	RunID string
	// Emitted counts guesses passed to the sink.
	Emitted int64
	// Expanded counts points popped from the frontier.
	Expanded int64
	// Pushed counts points pushed to the frontier, seeds included.
	Pushed      int64
	MaxFrontier int
	// Remaining is the frontier size when the run stopped.
	Remaining       int
	LastGuess       string
	LastProbability float64
	LimitReached    bool
	Duration        time.Duration
}

// Generator enumerates the guesses of a grammar index. Runs are
// independent; a Generator may be reused but not run concurrently with
// itself.
type Generator struct {
	lattices []*lattice
	opts     Options
}

// NewGenerator resolves every rule of ix and validates opts. It fails with
// UNKNOWN_TAG if a rule references a tag ix has no terminals for.
func NewGenerator(ix *grammar.Index, opts Options) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts.SetDefaults()

	rules := ix.Rules()
	g := &Generator{
		lattices: make([]*lattice, len(rules)),
		opts:     opts,
	}
	for i, r := range rules {
		l, err := newLattice(ix, i, r)
		if err != nil {
			return nil, err
		}
		g.lattices[i] = l
	}
	return g, nil
}

// Options returns the generator's options with defaults applied.
func (g *Generator) Options() Options { return g.opts }

// Run enumerates guesses into out until the frontier is exhausted, the
// limit is reached, out returns an error or ctx is cancelled.
//
// Reaching the limit is a normal stop: the remaining variants of the
// current point are not emitted and Summary.LimitReached is set. Sink
// errors are returned with code OUTPUT_ERROR; cancellation returns the
// context error. The summary is valid in every case.
func (g *Generator) Run(ctx context.Context, out Sink) (sum Summary, err error) {
	start := time.Now()
	sum.RunID = g.opts.RunID
	if sum.RunID == "" {
		sum.RunID = uuid.NewString()
	}
	hooks := observability.Generator()
	hooks.OnRunStart(ctx, sum.RunID, g.opts.Strategy.Name(), len(g.lattices))
	logger := g.opts.Logger.With("run", shortID(sum.RunID))

	front := NewFrontier()
	defer func() {
		sum.Remaining = front.Size()
		sum.Duration = time.Since(start)
		hooks.OnRunComplete(ctx, sum.RunID, sum.Emitted, sum.Duration, err)
		logger.Info("run finished",
			"guesses", sum.Emitted,
			"last", sum.LastGuess,
			"probability", sum.LastProbability,
			"limit", sum.LimitReached,
		)
	}()

	for _, l := range g.lattices {
		if s := l.seed(); s.prob >= g.opts.MinProbability {
			front.Push(s)
			sum.Pushed++
		}
	}
	sum.MaxFrontier = front.Size()
	logger.Debug("frontier seeded", "rules", len(g.lattices), "seeds", front.Size(), "strategy", g.opts.Strategy.Name())

	var (
		mangler  *Mangler
		children []Point
		variants []string
	)
	if g.opts.Mangle {
		mangler = NewMangler()
	}

	for !front.Empty() {
		if sum.Expanded%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
		}

		p, _ := front.Pop()
		sum.Expanded++

		children = g.opts.Strategy.Expand(p, g.opts.MinProbability, children[:0])
		for _, c := range children {
			front.Push(c)
		}
		sum.Pushed += int64(len(children))
		if n := front.Size(); n > sum.MaxFrontier {
			sum.MaxFrontier = n
		}

		if mangler != nil {
			variants = mangler.Variants(p)
		} else {
			variants = append(variants[:0], Decode(p))
		}

		prob := p.Probability()
		for _, s := range variants {
			if utf8.RuneCountInString(s) < g.opts.MinLength {
				continue
			}
			rec := Record{Guess: s, Probability: prob, Rule: p.lat.rule.Structure, RuleIndex: p.lat.index}
			if err := out.Emit(rec); err != nil {
				return sum, errors.Wrap(errors.ErrCodeOutput, err, "emit guess %d", sum.Emitted+1)
			}
			sum.Emitted++
			sum.LastGuess = s
			sum.LastProbability = prob

			if sum.Emitted%g.opts.ProgressEvery == 0 {
				hooks.OnProgress(ctx, sum.RunID, sum.Emitted, front.Size())
				logger.Info("progress", "guesses", sum.Emitted, "frontier", front.Size())
			}
			if g.opts.Limit > 0 && sum.Emitted == g.opts.Limit {
				sum.LimitReached = true
				return sum, nil
			}
		}
	}
	return sum, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
