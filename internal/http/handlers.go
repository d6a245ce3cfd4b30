package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quantumauth-io/pyro-wing-wallet/internal/router"
)

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "version": s.cfg.Version})
}

// RPC forwards the body to the router. Router-level failures are still 200
// with ok:false; only transport problems use HTTP status codes.
func (s *Server) RPC(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, router.Response{OK: false, Error: "request too large"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, s.dispatcher.Dispatch(c.Request.Context(), body))
}
