package signaling

import (
	"fmt"
	"net"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
	"google.golang.org/grpc"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ServerConfig configures a Server.
type ServerConfig struct {
	// IP is the interface the gRPC and metrics listeners bind to.
	IP string
	// Port is the gRPC listener port.
	Port int
	// MetricsPort is the /metrics HTTP listener port. 0 disables it.
	MetricsPort int
	// Logger defaults to a discarding logger if nil.
	Logger *logrus.Entry
}

func (cfg *ServerConfig) withDefaults() {
	if cfg.IP == "" {
		cfg.IP = "localhost"
	}
	if cfg.Logger == nil {
		l := logrus.New()
		l.Out = discardWriter{}
		cfg.Logger = logrus.NewEntry(l)
	}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// Server is the signaling-server utility's gRPC + metrics listener
// (spec.md §6), bootstrapped the way dbspgraph.Master starts its worker
// gRPC server: net.Listen + grpc.NewServer + RegisterXServer + background
// Serve.
type Server struct {
	cfg ServerConfig

	gSrv        *grpc.Server
	grpcListener net.Listener
	metricsSrv  *http.Server
	reg         *registry
}

// NewServer creates a Server ready to Start.
func NewServer(cfg ServerConfig) *Server {
	cfg.withDefaults()
	m := newMetrics()
	return &Server{
		cfg: cfg,
		reg: newRegistry(cfg.Logger, m),
	}
}

// Start begins listening for gRPC connections (and, if MetricsPort is set,
// HTTP /metrics requests). Calls to Start are non-blocking; Close shuts
// both listeners down.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.IP, s.cfg.Port)
	var err error
	if s.grpcListener, err = net.Listen("tcp", addr); err != nil {
		return xerrors.Errorf("signaling: cannot listen on %s: %w", addr, err)
	}

	s.gSrv = grpc.NewServer()
	RegisterSignalingServer(s.gSrv, s.reg)
	s.cfg.Logger.WithField("addr", s.grpcListener.Addr().String()).Info("signaling server listening")
	go func(l net.Listener) { _ = s.gSrv.Serve(l) }(s.grpcListener)

	if s.cfg.MetricsPort != 0 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(s.reg.metrics.registry, promhttp.HandlerOpts{}))
		s.metricsSrv = &http.Server{Addr: fmt.Sprintf("%s:%d", s.cfg.IP, s.cfg.MetricsPort), Handler: mux}
		go func(srv *http.Server) { _ = srv.ListenAndServe() }(s.metricsSrv)
	}

	return nil
}

// Close shuts down both listeners.
func (s *Server) Close() error {
	if s.gSrv != nil {
		s.gSrv.GracefulStop()
	}
	if s.metricsSrv != nil {
		return s.metricsSrv.Close()
	}
	return nil
}

// Addr returns the address the gRPC listener bound to, useful when Port
// was 0 (ephemeral port, e.g. in tests).
func (s *Server) Addr() string {
	if s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}
