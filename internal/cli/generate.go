package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pcfguess/pkg/errors"
	"github.com/matzehuels/pcfguess/pkg/guess"
	"github.com/matzehuels/pcfguess/pkg/sink"
)

// generateOpts holds the generate command's resolved options.
type generateOpts struct {
	algorithm     string
	mangle        bool
	limit         int64
	minLength     int
	minProb       float64
	probabilities bool
	output        string
	redisURL      string
	redisKey      string
	redisTTL      time.Duration
}

// generateCommand creates the generate command, the main entry point.
func (c *CLI) generateCommand() *cobra.Command {
	opts := &generateOpts{}

	cmd := &cobra.Command{
		Use:     "generate [grammar-dir]",
		Aliases: []string{"gen"},
		Short:   "Stream guesses in decreasing probability order",
		Long: `Stream every guess of a trained grammar, most probable first.

The grammar directory holds rules.txt (structure<TAB>probability per line)
and nonterminals/<tag>.txt (word<TAB>probability per line, sorted by
decreasing probability). Guesses are written to stdout, one per line;
logs and the final summary go to stderr.`,
		Example: `  # First million guesses
  pcfguess generate grammars/rockyou --limit 1000000

  # Case variants, at least 8 characters, with probabilities
  pcfguess gen grammars/rockyou -m --min-length 8 -p

  # Alternative expansion strategy, output to Redis
  pcfguess gen grammars/rockyou -a lowest-probability-parent --redis redis://localhost:6379/0`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.resolveGenerate(cmd, opts); err != nil {
				return err
			}
			return c.runGenerate(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", guess.StrategyPivotForward,
		"expansion strategy: pivot-forward (next) or lowest-probability-parent (deadbeat)")
	cmd.Flags().BoolVarP(&opts.mangle, "mangle", "m", false, "emit lower, UPPER and Title case variants")
	cmd.Flags().Int64VarP(&opts.limit, "limit", "n", 0, "stop after this many guesses (default: no limit)")
	cmd.Flags().IntVar(&opts.minLength, "min-length", 0, "skip guesses shorter than this many characters")
	cmd.Flags().Float64Var(&opts.minProb, "min-prob", 0, "stop expanding below this probability")
	cmd.Flags().BoolVarP(&opts.probabilities, "probabilities", "p", false, "append probability and structure to each guess")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.redisURL, "redis", "", "push guesses to this Redis URL instead of a file")
	cmd.Flags().StringVar(&opts.redisKey, "redis-key", sink.DefaultRedisKey, "Redis list key")
	cmd.Flags().DurationVar(&opts.redisTTL, "redis-ttl", 0, "expire the Redis list this long after the last push (0 keeps it)")

	cmd.RegisterFlagCompletionFunc("algorithm", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return guess.StrategyNames(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// resolveGenerate fills options not given on the command line from the
// profile and rejects an explicit non-positive limit.
func (c *CLI) resolveGenerate(cmd *cobra.Command, opts *generateOpts) error {
	flags := cmd.Flags()
	if flags.Changed("limit") && opts.limit <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "--limit must be positive (got %d); omit it for no limit", opts.limit)
	}
	if opts.redisTTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "--redis-ttl must not be negative (got %s)", opts.redisTTL)
	}

	p := c.profile
	if p == nil {
		return nil
	}
	if !flags.Changed("algorithm") && p.Algorithm != "" {
		opts.algorithm = p.Algorithm
	}
	if !flags.Changed("mangle") && p.Mangle != nil {
		opts.mangle = *p.Mangle
	}
	if !flags.Changed("limit") && p.Limit != nil {
		opts.limit = *p.Limit
	}
	if !flags.Changed("min-length") && p.MinLength != nil {
		opts.minLength = *p.MinLength
	}
	if !flags.Changed("min-prob") && p.MinProbability != nil {
		opts.minProb = *p.MinProbability
	}
	if !flags.Changed("probabilities") && p.Probabilities != nil {
		opts.probabilities = *p.Probabilities
	}
	if !flags.Changed("output") && p.Output != "" {
		opts.output = p.Output
	}
	if !flags.Changed("redis") && p.RedisURL != "" {
		opts.redisURL = p.RedisURL
	}
	if !flags.Changed("redis-key") && p.RedisKey != "" {
		opts.redisKey = p.RedisKey
	}
	if !flags.Changed("redis-ttl") && p.RedisTTL > 0 {
		opts.redisTTL = p.RedisTTL
	}
	return nil
}

// closingSink is a guess.Sink that must be closed to flush its tail.
type closingSink interface {
	guess.Sink
	Close() error
}

func (c *CLI) runGenerate(cmd *cobra.Command, args []string, opts *generateOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	strategy, err := guess.StrategyByName(opts.algorithm)
	if err != nil {
		return err
	}
	ix, err := c.loadGrammar(ctx, args)
	if err != nil {
		return err
	}
	gen, err := guess.NewGenerator(ix, guess.Options{
		Strategy:       strategy,
		Mangle:         opts.mangle,
		Limit:          opts.limit,
		MinLength:      opts.minLength,
		MinProbability: opts.minProb,
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	out, cleanup, err := c.openSink(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer cleanup()

	sum, runErr := gen.Run(ctx, out)
	// Flush whatever was emitted, even after an interrupt.
	if err := out.Close(); err != nil {
		if runErr == nil {
			runErr = errors.Wrap(errors.ErrCodeOutput, err, "flush output")
		} else {
			logger.Error("flush output", "err", err)
		}
	}

	if runErr != nil {
		printError("Stopped after %d guesses", sum.Emitted)
	} else {
		printSuccess("Generated %d guesses", sum.Emitted)
	}
	if sum.Emitted > 0 {
		printKeyValue("Last guess", sum.LastGuess)
		printNumber("Probability", strconv.FormatFloat(sum.LastProbability, 'g', 6, 64))
	}
	printNumber("Frontier", sum.Remaining)
	if sum.LimitReached {
		printWarning("Limit of %d guesses reached", opts.limit)
	}
	if opts.output != "" && opts.redisURL == "" {
		printFile(opts.output)
	}
	return runErr
}

// openSink opens the Redis or writer sink selected by opts. cleanup
// releases connections and files; the sink itself is closed by the caller.
func (c *CLI) openSink(ctx context.Context, cmd *cobra.Command, opts *generateOpts) (closingSink, func(), error) {
	if opts.redisURL != "" {
		client, err := sink.Dial(ctx, opts.redisURL)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeOutput, err, "open redis output")
		}
		s := sink.NewRedis(ctx, client,
			sink.WithKey(opts.redisKey),
			sink.WithTTL(opts.redisTTL),
			sink.WithRedisProbabilities(opts.probabilities),
		)
		loggerFromContext(ctx).Debug("writing to redis", "key", s.Key())
		return s, func() { client.Close() }, nil
	}

	w, err := openOutput(opts.output, cmd.OutOrStdout())
	if err != nil {
		return nil, nil, err
	}
	s := sink.NewWriter(w, sink.WithProbabilities(opts.probabilities))
	return s, func() {
		if err := w.Close(); err != nil {
			loggerFromContext(ctx).Warn(fmt.Sprintf("close %s", opts.output), "error", err)
		}
	}, nil
}
