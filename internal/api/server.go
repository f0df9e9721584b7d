// Package api exposes the matcher over HTTP as a small JSON surface:
// best-match, candidate search, query analysis, and a health probe.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/rencanakan/ahsmatch/internal/catalog"
	"github.com/rencanakan/ahsmatch/internal/complexity"
	"github.com/rencanakan/ahsmatch/internal/matching"
)

// Server hosts the HTTP surface over a shared matcher and repository.
type Server struct {
	addr     string
	matcher  *matching.Matcher
	repo     catalog.Repository
	analyzer *complexity.Analyzer
	logger   *log.Logger

	// securityLogger separates input-rejection noise from the main
	// request log so it can be audited on its own.
	securityLogger *log.Logger

	httpServer *http.Server
}

// NewServer wires a Server. A nil logger falls back to the default
// logger; a nil analyzer gets the default dictionaries.
func NewServer(addr string, matcher *matching.Matcher, repo catalog.Repository, analyzer *complexity.Analyzer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if analyzer == nil {
		analyzer = complexity.NewAnalyzer(nil)
	}
	return &Server{
		addr:           addr,
		matcher:        matcher,
		repo:           repo,
		analyzer:       analyzer,
		logger:         logger,
		securityLogger: logger.WithPrefix("security"),
	}
}

// Router builds the gin engine. Exposed separately from Run so tests
// can drive it with httptest.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(s.logger))

	router.GET("/healthz", s.handleHealth)

	apiGroup := router.Group("/api", NoStoreMiddleware())
	apiGroup.POST("/match/best", s.handleBestMatch)
	apiGroup.GET("/candidates", s.handleSearchCandidates)
	apiGroup.GET("/analyze", s.handleAnalyze)

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
