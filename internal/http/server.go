// Package http exposes the request router as a loopback JSON agent for
// clients that cannot use native messaging.
package http

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/router"
	"github.com/quantumauth-io/quantum-go-utils/log"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

const sessionHeader = "X-Pyro-Session"

// Dispatcher turns one raw request into one response.
type Dispatcher interface {
	Dispatch(ctx context.Context, raw []byte) router.Response
}

type Config struct {
	LocalHost      string
	Port           string
	AllowedOrigins []string
	Version        string
	// SessionToken must be sent in X-Pyro-Session on /api/rpc. Empty rejects
	// every call.
	SessionToken string
}

type Server struct {
	dispatcher Dispatcher
	cfg        Config
	engine     *gin.Engine
}

func NewServer(d Dispatcher, cfg Config) *Server {
	s := &Server{dispatcher: d, cfg: cfg}
	s.engine = NewRouter(s)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.LocalHost, s.cfg.Port)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP agent listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Wrap(err, "http agent")
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http agent shutdown")
	}
	log.Info("HTTP agent gracefully stopped")
	return nil
}
