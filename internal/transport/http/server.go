package http

import (
	stdhttp "net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay/internal/config"
	"github.com/vovakirdan/roomrelay/internal/core"
	"github.com/vovakirdan/roomrelay/internal/metrics"
)

// NewServer builds the HTTP server. The WebSocket endpoint sits on the mux
// directly since gin refuses to hijack a connection after the upgrade response;
// health, stats and Prometheus metrics (when m is non-nil and enabled in cfg)
// are served by gin behind CORS.
func NewServer(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger, m *metrics.Metrics) *stdhttp.Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	statsHandlers := NewStatsHandlers(hub, logger)
	api := router.Group("/api")
	api.GET("/stats", statsHandlers.GetStats)

	if cfg.MetricsEnabled && m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{stdhttp.MethodGet, stdhttp.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, cfg, logger, m))
	mux.Handle("/", c.Handler(router))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

// originPatterns converts configured CORS origins into the host patterns the
// WebSocket handshake matches against. Entries that do not parse as URLs with a
// host are used unchanged.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, origin := range origins {
		u, err := url.Parse(origin)
		if err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, origin)
	}
	return patterns
}
