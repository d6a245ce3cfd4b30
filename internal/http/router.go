package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(s *Server) *gin.Engine {
	r := gin.Default()

	allowed := originSet(s.cfg.AllowedOrigins)
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			_, ok := allowed[normalizeOrigin(origin)]
			return ok
		},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", sessionHeader},
		MaxAge:       600,
	}))

	api := r.Group("/api", loopbackOnly())
	{
		api.GET("/health", s.Health)
		api.POST("/rpc", requireSession(s.cfg.SessionToken), s.RPC)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
	})

	return r
}
