// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package server exposes floor-plan optimization over HTTP.
//
// Routes:
//   - POST /v1/optimize runs one optimization and returns its result;
//     results are cached by a hash of the problem and configuration.
//   - GET /v1/schedule returns the iteration budget and learning-rate curve
//     for a site count.
//   - GET /healthz reports liveness.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/2dChan/floorplan"
	"github.com/2dChan/floorplan/cache"
	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	maxBodyBytes = 8 << 20
	// RequestIDHeader carries the id assigned to every request.
	RequestIDHeader = "X-Request-ID"
	// CacheHeader is "hit" when a result was served from the cache.
	CacheHeader = "X-Cache"

	defaultSamples = 20
	maxSamples     = 1000

	// Limits on a single optimization request.
	maxSites      = 500
	maxIterations = 5000
)

// Server handles HTTP requests. It holds no per-run state; concurrent
// requests run independent optimizations.
type Server struct {
	cache  cache.Cache
	logger *log.Logger
	ttl    time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithCacheTTL sets the expiry of cached results. Zero keeps them forever.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Server) { s.ttl = ttl }
}

// New returns a server storing results in c. A nil c disables caching.
func New(c cache.Cache, logger *log.Logger, opts ...Option) *Server {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{cache: c, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/optimize", s.handleOptimize)
		r.Get("/schedule", s.handleSchedule)
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// OptimizeRequest is the body of POST /v1/optimize. Overrides is a partial
// floorplan.Config in JSON applied on top of the preset.
type OptimizeRequest struct {
	Problem   floorplan.FlatProblem `json:"problem"`
	Preset    string                `json:"preset,omitempty"`
	Overrides json.RawMessage       `json:"overrides,omitempty"`
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := loggerFromContext(ctx, s.logger)

	var req OptimizeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", fmt.Errorf("decode request: %w", err))
		return
	}

	cfg, err := requestConfig(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err)
		return
	}
	p, err := floorplan.FromFlat(req.Problem)
	if err != nil {
		writeCodeError(w, err)
		return
	}
	if err := cfg.Validate(); err != nil {
		writeCodeError(w, err)
		return
	}
	if err := checkLimits(p, cfg); err != nil {
		writeError(w, http.StatusBadRequest, "", err)
		return
	}

	key, err := cache.Key("optimize", req.Problem, cfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}
	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		logger.Warn("cache get failed", "err", err)
	} else if ok {
		w.Header().Set(CacheHeader, "hit")
		writeRawJSON(w, http.StatusOK, data)
		return
	}

	start := time.Now()
	res, err := floorplan.Optimize(p, cfg)
	if err != nil {
		logger.Warn("optimization failed", "err", err)
		writeCodeError(w, err)
		return
	}
	logger.Info("optimized",
		"sites", len(p.Sites),
		"iterations", res.Iterations,
		"loss", res.Losses.Total(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	data, err := json.Marshal(res.Flat())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "", err)
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		logger.Warn("cache set failed", "err", err)
	}
	w.Header().Set(CacheHeader, "miss")
	writeRawJSON(w, http.StatusOK, data)
}

func requestConfig(req OptimizeRequest) (floorplan.Config, error) {
	cfg, err := floorplan.Preset(req.Preset)
	if err != nil {
		return floorplan.Config{}, err
	}
	if len(req.Overrides) > 0 {
		dec := json.NewDecoder(bytes.NewReader(req.Overrides))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return floorplan.Config{}, fmt.Errorf("decode overrides: %w", err)
		}
	}
	return cfg, nil
}

// checkLimits rejects problems too large for one request to serve.
func checkLimits(p floorplan.Problem, cfg floorplan.Config) error {
	if n := len(p.Sites); n > maxSites {
		return fmt.Errorf("problem has %d sites, limit is %d", n, maxSites)
	}
	if n := floorplan.NewPlan(cfg, len(p.Sites), p.Anchored()).Iterations; n > maxIterations {
		return fmt.Errorf("run needs %d iterations, limit is %d", n, maxIterations)
	}
	return nil
}

// SchedulePoint is one sample of a learning-rate curve.
type SchedulePoint struct {
	Iteration      int     `json:"iteration"`
	LearningRate   float64 `json:"learning_rate"`
	TopologyWeight float64 `json:"topology_weight"`
}

// ScheduleResponse is the body returned by GET /v1/schedule.
type ScheduleResponse struct {
	Iterations int             `json:"iterations"`
	Warmup     int             `json:"warmup"`
	DecayStart int             `json:"decay_start"`
	Samples    []SchedulePoint `json:"samples"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sites, err := strconv.Atoi(q.Get("sites"))
	if err != nil || sites < 1 {
		writeError(w, http.StatusBadRequest, "", fmt.Errorf("sites must be a positive integer, got %q", q.Get("sites")))
		return
	}
	anchored := false
	if v := q.Get("anchored"); v != "" {
		if anchored, err = strconv.ParseBool(v); err != nil {
			writeError(w, http.StatusBadRequest, "", fmt.Errorf("anchored: %w", err))
			return
		}
	}
	samples := defaultSamples
	if v := q.Get("samples"); v != "" {
		if samples, err = strconv.Atoi(v); err != nil || samples < 2 || samples > maxSamples {
			writeError(w, http.StatusBadRequest, "", fmt.Errorf("samples must be in [2, %d], got %q", maxSamples, v))
			return
		}
	}
	cfg, err := floorplan.Preset(q.Get("preset"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "", err)
		return
	}

	writeJSON(w, http.StatusOK, Schedule(floorplan.NewPlan(cfg, sites, anchored), samples))
}

// Schedule samples plan at n evenly spaced iterations including the first
// and the last.
func Schedule(plan floorplan.Plan, n int) ScheduleResponse {
	resp := ScheduleResponse{
		Iterations: plan.Iterations,
		Warmup:     plan.Warmup,
		DecayStart: plan.DecayStart,
	}
	n = min(n, plan.Iterations)
	for k := range n {
		t := 0
		if n > 1 {
			t = k * (plan.Iterations - 1) / (n - 1)
		}
		resp.Samples = append(resp.Samples, SchedulePoint{
			Iteration:      t,
			LearningRate:   plan.LearningRate(t),
			TopologyWeight: plan.TopologyWeight(t),
		})
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// statusFor maps an error code onto an HTTP status.
func statusFor(code floorplan.Code) int {
	switch code {
	case floorplan.CodeInvariant, floorplan.CodeComputation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeCodeError(w http.ResponseWriter, err error) {
	code := floorplan.GetCode(err)
	writeError(w, statusFor(code), code, err)
}

func writeError(w http.ResponseWriter, status int, code floorplan.Code, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		status = http.StatusRequestEntityTooLarge
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: string(code)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRawJSON(w, status, data)
}

func writeRawJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
