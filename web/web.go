// Package web serves the arm trajectory session over HTTP.
package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.viam.com/utils"
	"goji.io"
	"goji.io/pat"

	"go.viam.com/armtraj/logging"
	"go.viam.com/armtraj/services/trajectory"
)

// Options configure the HTTP server.
type Options struct {
	// AllowedOrigins restricts CORS. An empty list allows every origin.
	AllowedOrigins []string
	// Gatherer is served on /metrics when set.
	Gatherer prometheus.Gatherer
	Pprof    bool
}

// Server exposes one trajectory session.
type Server struct {
	svc     trajectory.Service
	options Options
	logger  logging.Logger
	mux     *goji.Mux
}

// New returns a server for svc with all routes installed.
func New(svc trajectory.Service, options Options, logger logging.Logger) *Server {
	s := &Server{svc: svc, options: options, logger: logger}
	s.mux = s.initMux()
	return s
}

// Handler returns the root handler, including CORS.
func (s *Server) Handler() http.Handler {
	var corsHandler *cors.Cors
	if len(s.options.AllowedOrigins) == 0 {
		corsHandler = cors.AllowAll()
	} else {
		corsHandler = cors.New(cors.Options{
			AllowedOrigins: s.options.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type", DebugHeader},
		})
	}
	return corsHandler.Handler(s.mux)
}

func (s *Server) initMux() *goji.Mux {
	mux := goji.NewMux()
	mux.Use(s.logRequests)

	mux.HandleFunc(pat.Post("/arm/plan_pmp_q"), s.handlePlan)
	mux.HandleFunc(pat.Get("/arm/state"), s.handleState)
	mux.HandleFunc(pat.Post("/arm/reset"), s.handleReset)
	mux.HandleFunc(pat.Post("/arm/torque"), s.handleTorque)

	if s.options.Gatherer != nil {
		mux.Handle(pat.Get("/metrics"), promhttp.HandlerFor(s.options.Gatherer, promhttp.HandlerOpts{}))
	}
	if s.options.Pprof {
		mux.HandleFunc(pat.New("/debug/pprof/"), pprof.Index)
		mux.HandleFunc(pat.New("/debug/pprof/cmdline"), pprof.Cmdline)
		mux.HandleFunc(pat.New("/debug/pprof/profile"), pprof.Profile)
		mux.HandleFunc(pat.New("/debug/pprof/symbol"), pprof.Symbol)
		mux.HandleFunc(pat.New("/debug/pprof/trace"), pprof.Trace)
	}
	return mux
}

// DebugHeader turns on debug logging for a single request. Its value tags the log lines.
const DebugHeader = "X-Armtraj-Debug"

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key := r.Header.Get(DebugHeader); key != "" {
			r = r.WithContext(logging.EnableDebugMode(r.Context(), key))
		}
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.CDebugw(r.Context(), "handled request",
			"method", r.Method, "path", r.URL.Path, "took", time.Since(start), "debug_key", logging.GetName(r.Context()))
	})
}

// Serve serves on listener until ctx is done.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Addr:              listener.Addr().String(),
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Handler:           s.Handler(),
	}

	utils.PanicCapturingGo(func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Errorw("error shutting down", "error", err)
		}
	})

	s.logger.Infow("serving", "url", fmt.Sprintf("http://%s", listener.Addr().String()), "session", s.svc.ID())
	if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ListenAndServe listens on addr and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}
