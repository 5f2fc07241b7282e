// Package api exposes the scan pipeline over HTTP for serve mode.
package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ASRagab/ai-tool-guard-sub000/internal/detect"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/patterns"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/report"
	"github.com/ASRagab/ai-tool-guard-sub000/internal/scan"
)

// Server handles HTTP API requests for detection, scanning, and
// pattern catalog management.
type Server struct {
	orchestrator *detect.Orchestrator
	aggregator   *detect.Aggregator
	registry     *patterns.Registry
	version      string
	router       *gin.Engine
}

// NewServer creates an API server over a loaded detection pipeline.
func NewServer(orch *detect.Orchestrator, agg *detect.Aggregator, reg *patterns.Registry, version string) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply middleware in order
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())
	router.Use(BodySizeLimitMiddleware(MaxBodySize))

	s := &Server{
		orchestrator: orch,
		aggregator:   agg,
		registry:     reg,
		version:      version,
		router:       router,
	}

	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler for the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	g := s.router.Group("/api/aiguard")
	{
		g.GET("/ecosystems", s.handleEcosystems)
		g.POST("/scan", s.handleScan)
		g.GET("/patterns", s.handlePatterns)
		g.POST("/patterns/reload", s.handleReload)
		g.GET("/stats", s.handleStats)
	}
}

// ScanRequest narrows a scan run. Both fields are optional; empty
// means scan everything detected.
type ScanRequest struct {
	Ecosystem     string `json:"ecosystem"`
	ComponentType string `json:"type"`
}

// handleScan handles POST /api/aiguard/scan
func (s *Server) handleScan(c *gin.Context) {
	var req ScanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	results, failures, err := s.orchestrator.DetectAll(c.Request.Context(), req.Ecosystem, req.ComponentType)
	if err != nil {
		// The only hard detection error is an unknown ecosystem filter
		Error(c, http.StatusBadRequest, err.Error())
		return
	}

	rep := s.aggregator.ScanDetected(results)
	Success(c, report.Output{Report: rep, Failures: failures, Version: s.version})
}

// handleEcosystems handles GET /api/aiguard/ecosystems
func (s *Server) handleEcosystems(c *gin.Context) {
	results, failures, err := s.orchestrator.DetectAll(c.Request.Context(), "", "")
	if err != nil {
		Error(c, http.StatusInternalServerError, err.Error())
		return
	}

	Success(c, gin.H{
		"known":    s.orchestrator.EcosystemNames(),
		"detected": results,
		"failures": failures,
	})
}

// handlePatterns handles GET /api/aiguard/patterns.
// An optional ?set= query narrows the listing to one pattern set.
func (s *Server) handlePatterns(c *gin.Context) {
	sets := patterns.ValidSets
	if q := c.Query("set"); q != "" {
		set := patterns.Set(q)
		if !set.Valid() {
			Error(c, http.StatusBadRequest, fmt.Sprintf("unknown pattern set %q", q))
			return
		}
		sets = []patterns.Set{set}
	}

	bySet := make(map[string][]patterns.Definition, len(sets))
	total := 0
	for _, set := range sets {
		list := s.registry.Extension(set)
		defs := make([]patterns.Definition, 0, len(list))
		for _, p := range list {
			defs = append(defs, p.Definition)
		}
		bySet[string(set)] = defs
		total += len(defs)
	}

	Success(c, gin.H{"total": total, "sets": bySet})
}

// handleReload handles POST /api/aiguard/patterns/reload
func (s *Server) handleReload(c *gin.Context) {
	if err := s.registry.ReloadUser(); err != nil {
		Error(c, http.StatusInternalServerError, fmt.Sprintf("reload failed: %v", err))
		return
	}
	Success(c, gin.H{"patterns": s.registry.Count()})
}

// handleStats handles GET /api/aiguard/stats.
// Returns in-memory counters for the current process, not persisted totals.
func (s *Server) handleStats(c *gin.Context) {
	Success(c, scan.GetMetrics().GetStats())
}

// handleHealth handles GET /health
func (s *Server) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
