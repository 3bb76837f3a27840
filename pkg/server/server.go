package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/pcfguess/pkg/errors"
	"github.com/matzehuels/pcfguess/pkg/grammar"
	"github.com/matzehuels/pcfguess/pkg/guess"
	"github.com/matzehuels/pcfguess/pkg/observability"
	"github.com/matzehuels/pcfguess/pkg/sink"
)

// DefaultMaxLimit caps the limit parameter of /guesses.
const DefaultMaxLimit = 1_000_000

// RunIDHeader carries the run ID of a /guesses response.
const RunIDHeader = "X-Run-ID"

// Config configures the handler.
type Config struct {
	Index *grammar.Index

	// MaxLimit caps the limit parameter. Defaults to DefaultMaxLimit.
	MaxLimit int64

	// Gatherer serves /metrics. The route is not mounted when nil.
	Gatherer prometheus.Gatherer

	// Logger defaults to a discard logger.
	Logger *log.Logger
}

type server struct {
	ix       *grammar.Index
	stats    grammarStats
	maxLimit int64
	logger   *log.Logger
}

// NewHandler returns the router for cfg. cfg.Index must not be nil.
func NewHandler(cfg Config) http.Handler {
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = DefaultMaxLimit
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &server{
		ix:       cfg.Index,
		stats:    newGrammarStats(cfg.Index.Stats()),
		maxLimit: cfg.MaxLimit,
		logger:   cfg.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		io.WriteString(w, "ok\n")
	})
	r.Get("/grammar", s.grammar)
	r.Get("/guesses", s.guesses)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// instrument reports every request to the registered HTTP hooks, labeled
// by route pattern rather than raw path.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
	})
}

type grammarStats struct {
	Rules          int     `json:"rules"`
	Tags           int     `json:"tags"`
	Terminals      int     `json:"terminals"`
	Candidates     string  `json:"candidates"`
	MaxProbability float64 `json:"max_probability"`
	MinProbability float64 `json:"min_probability"`
}

func newGrammarStats(st grammar.Stats) grammarStats {
	return grammarStats{
		Rules:          st.Rules,
		Tags:           st.Tags,
		Terminals:      st.Terminals,
		Candidates:     st.Candidates.String(),
		MaxProbability: st.MaxProbability,
		MinProbability: st.MinProbability,
	}
}

func (s *server) grammar(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.stats); err != nil {
		s.logger.Error("encode grammar stats", "error", err)
	}
}

func (s *server) guesses(w http.ResponseWriter, r *http.Request) {
	opts, probabilities, err := s.parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	opts.RunID = uuid.NewString()
	opts.Logger = s.logger

	gen, err := guess.NewGenerator(s.ix, opts)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set(RunIDHeader, opts.RunID)
	out := sink.NewWriter(w, sink.WithProbabilities(probabilities))
	sum, err := gen.Run(r.Context(), out)
	if ferr := out.Flush(); err == nil && ferr != nil {
		err = errors.Wrap(errors.ErrCodeOutput, ferr, "flush response")
	}
	if err != nil {
		// Headers are gone; the client sees a short stream.
		s.logger.Warn("guess stream ended early", "run", opts.RunID, "emitted", sum.Emitted, "error", err)
	}
}

func (s *server) parseQuery(r *http.Request) (guess.Options, bool, error) {
	q := r.URL.Query()
	var opts guess.Options

	raw := q.Get("limit")
	if raw == "" {
		return opts, false, errors.New(errors.ErrCodeInvalidConfig, "limit is required")
	}
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || limit <= 0 {
		return opts, false, errors.New(errors.ErrCodeInvalidConfig, "limit must be a positive integer (got %q)", raw)
	}
	if limit > s.maxLimit {
		return opts, false, errors.New(errors.ErrCodeInvalidConfig, "limit %d exceeds maximum %d", limit, s.maxLimit)
	}
	opts.Limit = limit

	if opts.Strategy, err = guess.StrategyByName(q.Get("algorithm")); err != nil {
		return opts, false, err
	}
	if opts.Mangle, err = parseBool(q, "mangle"); err != nil {
		return opts, false, err
	}
	probabilities, err := parseBool(q, "probabilities")
	if err != nil {
		return opts, false, err
	}
	if v := q.Get("min_length"); v != "" {
		if opts.MinLength, err = strconv.Atoi(v); err != nil {
			return opts, false, errors.New(errors.ErrCodeInvalidConfig, "min_length must be an integer (got %q)", v)
		}
	}
	if v := q.Get("min_prob"); v != "" {
		if opts.MinProbability, err = strconv.ParseFloat(v, 64); err != nil {
			return opts, false, errors.New(errors.ErrCodeInvalidConfig, "min_prob must be a number (got %q)", v)
		}
	}
	return opts, probabilities, opts.Validate()
}

func parseBool(q map[string][]string, key string) (bool, error) {
	vs := q[key]
	if len(vs) == 0 || vs[0] == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(vs[0])
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidConfig, "%s must be a boolean (got %q)", key, vs[0])
	}
	return b, nil
}

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Code: errors.GetCode(err), Message: errors.UserMessage(err)})
}
