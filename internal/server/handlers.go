package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/eduagent/internal/content"
	"github.com/abhisek/eduagent/internal/store"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type generateRequest struct {
	Grade content.Grade `json:"grade"`
	Topic string        `json:"topic"`
}

type generationSummary struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Grade        string    `json:"grade"`
	GradeLevel   int       `json:"grade_level"`
	Topic        string    `json:"topic"`
	ReviewStatus string    `json:"review_status"`
	Refined      bool      `json:"refined"`
	Model        string    `json:"model,omitempty"`
	LatencyMs    int64     `json:"latency_ms"`
}

type generationDetail struct {
	generationSummary
	Result json.RawMessage `json:"result"`
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"ProductName": content.ProductName,
		"Tagline":     content.Tagline,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "product": content.ProductName})
}

func (s *Server) handleGenerate(c *gin.Context) {
	req := generateRequest{Grade: content.DefaultGrade}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body: " + err.Error()})
		return
	}
	if req.Grade == "" {
		req.Grade = content.DefaultGrade
	}
	if req.Topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Topic is required"})
		return
	}

	start := time.Now()
	result, err := s.pipeline.Run(c.Request.Context(), req.Grade, req.Topic)
	if err != nil {
		slog.Error("content pipeline failed",
			"grade", string(req.Grade), "topic", req.Topic,
			"request_id", c.GetString(requestIDKey), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	latency := time.Since(start)

	env := content.NewEnvelope(result)
	s.record(c, env, req, latency)

	c.JSON(http.StatusOK, env)
}

// record stores a finished generation. Storage failures are logged and
// do not fail the request; the content has already been produced.
func (s *Server) record(c *gin.Context, env *content.Envelope, req generateRequest, latency time.Duration) {
	if s.generations == nil {
		return
	}
	rec, err := env.Record(req.Grade, req.Topic, s.model, latency)
	if err == nil {
		err = s.generations.Save(c.Request.Context(), rec)
	}
	if err != nil {
		slog.Warn("save generation", "id", env.ID, "error", err)
	}
}

func (s *Server) handleListGenerations(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	if s.generations == nil {
		c.JSON(http.StatusOK, gin.H{"generations": []generationSummary{}})
		return
	}
	records, err := s.generations.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]generationSummary, 0, len(records))
	for i := range records {
		out = append(out, summarize(&records[i]))
	}
	c.JSON(http.StatusOK, gin.H{"generations": out})
}

func (s *Server) handleGetGeneration(c *gin.Context) {
	var rec *store.GenerationRecord
	if s.generations != nil {
		var err error
		rec, err = s.generations.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "generation not found"})
		return
	}
	c.JSON(http.StatusOK, generationDetail{
		generationSummary: summarize(rec),
		Result:            rec.Result,
	})
}

func summarize(r *store.GenerationRecord) generationSummary {
	return generationSummary{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		Grade:        r.Grade,
		GradeLevel:   content.Grade(r.Grade).Level(),
		Topic:        r.Topic,
		ReviewStatus: r.ReviewStatus,
		Refined:      r.Refined,
		Model:        r.Model,
		LatencyMs:    r.LatencyMs,
	}
}
