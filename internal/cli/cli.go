package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pcfguess/pkg/buildinfo"
	"github.com/matzehuels/pcfguess/pkg/errors"
	"github.com/matzehuels/pcfguess/pkg/grammar"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "pcfguess"

	// envPrefix prefixes every environment variable the CLI reads.
	envPrefix = "PCFGUESS_"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	profile    *profile
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "pcfguess enumerates password guesses from a probabilistic grammar",
		Long: `pcfguess reads a trained probabilistic context-free grammar and prints
every guess it describes in order of decreasing probability.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadDotEnv(".env"); err != nil {
				return err
			}
			prof, err := loadProfile(c.configPath)
			if err != nil {
				return err
			}
			prof.applyEnv()
			c.profile = prof
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML profile with default run options")

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.latticeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Grammar Loading
// =============================================================================

// grammarDir picks the grammar directory from the first argument, falling
// back to the profile (which already carries the environment override).
func (c *CLI) grammarDir(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if c.profile != nil && c.profile.Grammar != "" {
		return c.profile.Grammar, nil
	}
	return "", errors.New(errors.ErrCodeInvalidConfig,
		"no grammar directory (pass it as an argument, set %sGRAMMAR or \"grammar\" in --config)", envPrefix)
}

// loadGrammar resolves and loads the grammar directory.
func (c *CLI) loadGrammar(ctx context.Context, args []string) (*grammar.Index, error) {
	dir, err := c.grammarDir(args)
	if err != nil {
		return nil, err
	}
	logger := loggerFromContext(ctx)
	logger.Debug("loading grammar", "dir", dir)

	sw := startStopwatch(logger)
	ix, err := grammar.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	sw.stop("Loaded grammar " + filepath.Base(dir))
	return ix, nil
}

// =============================================================================
// Output
// =============================================================================

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty or "-", it returns stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeOutput, err, "create %s", path)
	}
	return f, nil
}

// writeFile writes data to path, or to stdout if path is empty.
func writeFile(data []byte, path string, stdout io.Writer) error {
	w, err := openOutput(path, stdout)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
