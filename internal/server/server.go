package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/cdpctl/internal/config"
	"github.com/danmuck/cdpctl/internal/inspect"
	"github.com/danmuck/cdpctl/internal/observability"
)

const (
	serviceName = "cdpctl"
	version     = "0.1.0"

	// maxBodyBytes bounds decode uploads.
	maxBodyBytes = 4 << 20
)

// Server exposes CDP decode and encode over HTTP.
type Server struct {
	Addr     string
	Appeared time.Time

	encoder *inspect.Encoder
	router  *gin.Engine
}

func New(cfg config.Config) *Server {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(serviceName))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(cfg.Server.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	s := &Server{
		Addr:     cfg.Server.Addr,
		Appeared: time.Now(),
		encoder:  inspect.NewEncoder(cfg.Writer),
		router:   r,
	}
	s.RegisterRoutes()
	return s
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) Serve() error {
	log.Info().Str("addr", s.Addr).Msg("cdpctl: serving")
	return s.router.Run(s.Addr)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
