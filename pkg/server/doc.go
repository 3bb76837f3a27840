// Package server exposes a grammar over HTTP.
//
// Routes:
//
//	GET /guesses   stream guesses as text/plain, one per line
//	GET /grammar   grammar statistics as JSON
//	GET /healthz   liveness check
//	GET /metrics   Prometheus metrics (when a gatherer is configured)
//
// /guesses accepts the run options as query parameters:
//
//	limit          number of guesses, required, at most Config.MaxLimit
//	algorithm      expansion strategy name (default pivot-forward)
//	mangle         emit case variants (bool)
//	min_length     drop guesses shorter than this
//	min_prob       prune points below this probability
//	probabilities  append probability and structure to each line (bool)
//
// Every /guesses response carries the run ID in the X-Run-ID header.
// Once the body has started, a failing run can only be reported by
// truncating the stream; the error is logged.
package server
