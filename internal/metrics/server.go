package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"photo-pipeline/internal/logging"
	"photo-pipeline/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes /metrics (and a trivial /healthz) while a run is in
// progress, so long runs can be scraped.
type Server struct {
	srv      *http.Server
	listener net.Listener
}

// NewRouter returns the router served by Server.
func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Logger(middleware.DefaultLoggingConfig()))
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
	return r
}

// StartServer listens on addr and serves the metrics router in the
// background. The listener is bound before returning so a port conflict is
// reported to the caller.
func StartServer(addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	s := &Server{
		srv: &http.Server{
			Handler:           NewRouter(),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		listener: ln,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Metrics server error: %v", err)
		}
	}()

	logging.Info("Metrics available at http://%s/metrics", ln.Addr())
	return s, nil
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Shutdown stops the server, waiting up to the context deadline for
// in-flight scrapes.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
