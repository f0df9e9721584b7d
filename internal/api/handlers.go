package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

type matchRequest struct {
	// Pointers distinguish absent fields from empty ones: a missing
	// description is "required", an empty one is "cannot be empty".
	Description *string `json:"description"`
	Unit        *string `json:"unit"`
}

// handleBestMatch serves POST /api/match/best.
func (s *Server) handleBestMatch(c *gin.Context) {
	if ct := c.GetHeader("Content-Type"); ct != "" && !strings.Contains(ct, "application/json") {
		s.securityLogger.Warn("rejected request with invalid content type",
			"content_type", ct, "request_id", c.GetString("request_id"))
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Unsupported content type"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxJSONPayloadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if len(body) > MaxJSONPayloadBytes {
		s.securityLogger.Warn("payload rejected due to size",
			"bytes", len(body), "request_id", c.GetString("request_id"))
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Payload too large"})
		return
	}
	if len(body) == 0 {
		body = []byte("{}")
	}

	var req matchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.logger.Warn("invalid JSON in best-match request", "request_id", c.GetString("request_id"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	description, err := sanitizeDescription(req.Description)
	if err == nil {
		var unit string
		unit, err = sanitizeUnit(req.Unit)
		if err == nil {
			s.bestMatch(c, description, unit)
			return
		}
	}

	s.securityLogger.Warn("rejected payload on validation error",
		"error", err, "request_id", c.GetString("request_id"))
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
}

func (s *Server) bestMatch(c *gin.Context, description, unit string) {
	result, err := s.matcher.BestMatch(c.Request.Context(), description, unit)
	if err != nil {
		s.logger.Error("best match failed", "error", err, "request_id", c.GetString("request_id"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Matching failed"})
		return
	}

	// Unit-filtered results keep the alternatives payload shape.
	if len(result.Alternatives) > 0 {
		c.JSON(http.StatusOK, gin.H{
			"message":      result.Message,
			"alternatives": result.Alternatives,
		})
		return
	}

	var match any
	switch {
	case result.Best != nil:
		match = result.Best
	case len(result.Matches) > 0:
		match = result.Matches
	}
	c.JSON(http.StatusOK, gin.H{"status": result.Status, "match": match})
}

// handleSearchCandidates serves GET /api/candidates.
func (s *Server) handleSearchCandidates(c *gin.Context) {
	term := c.Query("term")
	if strings.TrimSpace(term) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "term is required"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 50"})
			return
		}
		limit = parsed
	}

	rows, err := s.matcher.SearchCandidates(c.Request.Context(), term, limit)
	if err != nil {
		s.logger.Error("candidate search failed", "error", err, "request_id", c.GetString("request_id"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": rows})
}

// handleAnalyze serves GET /api/analyze.
func (s *Server) handleAnalyze(c *gin.Context) {
	summary := s.analyzer.Summary(c.Query("description"))
	if _, bad := summary["error"]; bad {
		c.JSON(http.StatusBadRequest, summary)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// handleHealth serves GET /healthz.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"catalog_entries": s.repo.Len(),
	})
}
