package cli

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pcfguess/pkg/buildinfo"
	"github.com/matzehuels/pcfguess/pkg/observability"
	"github.com/matzehuels/pcfguess/pkg/server"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command for the HTTP endpoint.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		maxLimit int64
	)

	cmd := &cobra.Command{
		Use:   "serve [grammar-dir]",
		Short: "Serve guesses over HTTP",
		Long: `Load a grammar once and stream guesses over HTTP.

Routes:
  GET /guesses?limit=N[&mangle=true][&min_length=L][&min_prob=P]
               [&algorithm=NAME][&probabilities=true]
  GET /grammar   grammar statistics as JSON
  GET /healthz   liveness check
  GET /metrics   Prometheus metrics`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			ix, err := c.loadGrammar(ctx, args)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			hooks := observability.NewPrometheusHooks(reg)
			observability.SetGeneratorHooks(hooks)
			observability.SetHTTPHooks(hooks)
			defer observability.Reset()

			srv := &http.Server{
				Handler: server.NewHandler(server.Config{
					Index:    ix,
					MaxLimit: maxLimit,
					Gatherer: reg,
					Logger:   logger,
				}),
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return ctx },
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			logger.Info("serving", buildinfo.LogFields()...)
			printInfo("Listening on http://%s", ln.Addr())

			errc := make(chan error, 1)
			go func() { errc <- srv.Serve(ln) }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return ctx.Err()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().Int64Var(&maxLimit, "max-limit", server.DefaultMaxLimit, "largest limit a request may ask for")

	return cmd
}
