// Package api handles HTTP and WebSocket API endpoints
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/thereceipt/titlecard-engine/internal/archive"
	"github.com/thereceipt/titlecard-engine/internal/batch"
	"github.com/thereceipt/titlecard-engine/internal/card"
	"github.com/thereceipt/titlecard-engine/internal/failure"
	"github.com/thereceipt/titlecard-engine/internal/queue"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// Server is the API server
type Server struct {
	router   *gin.Engine
	runner   *batch.Runner
	queue    *queue.Queue
	archive  *archive.Index
	hub      *Hub
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewServer creates a new API server. The archive may be nil.
func NewServer(runner *batch.Runner, maxRetries int, idx *archive.Index, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(corsMiddleware())

	hub := NewHub(logger)

	server := &Server{
		router:  router,
		runner:  runner,
		archive: idx,
		hub:     hub,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	server.queue = queue.New(runner, server.observer(), maxRetries, logger)

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/variants", s.handleGetVariants)
	s.router.POST("/render", s.handleRender)
	s.router.POST("/batch", s.handleBatch)
	s.router.POST("/classify", s.handleClassify)

	s.router.POST("/jobs", s.handleEnqueue)
	s.router.GET("/jobs", s.handleGetJobs)
	s.router.GET("/job/:id", s.handleGetJob)

	s.router.GET("/archive", s.handleGetArchive)

	s.router.GET("/ws", s.handleWebSocket)

	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}

// Handler exposes the router for http.Server and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Hub returns the websocket hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Close stops the job queue and disconnects websocket clients
func (s *Server) Close() {
	s.queue.Stop()
	s.hub.Close()
}

// observer fans batch progress out to websocket clients and the archive
func (s *Server) observer() batch.Observer {
	obs := batch.Observers{s.hub}
	if s.archive != nil {
		obs = append(obs, s.archive)
	}
	return obs
}

// handleGetVariants returns the metadata of every registered variant
func (s *Server) handleGetVariants(c *gin.Context) {
	c.JSON(200, gin.H{
		"variants": s.runner.Registry().List(),
	})
}

// handleRender renders a single card synchronously
func (s *Server) handleRender(c *gin.Context) {
	var spec cardformat.CardSpec
	if err := c.ShouldBindJSON(&spec); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid card: %v", err)})
		return
	}

	obs := s.observer()
	obs.OnStart(1)
	res := s.runner.RenderOne(c.Request.Context(), spec)
	obs.OnCardDone(1, 1, res)

	c.JSON(statusFor(res), res)
}

// handleBatch renders many cards and returns the report
func (s *Server) handleBatch(c *gin.Context) {
	var req cardformat.Batch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid batch: %v", err)})
		return
	}
	if len(req.Cards) == 0 {
		c.JSON(400, gin.H{"error": "at least one card is required"})
		return
	}

	rep := s.runner.RunWithObserver(c.Request.Context(), req.Cards, s.observer())
	c.JSON(200, rep)
}

// handleClassify returns the archive grouping for a card's customization
func (s *Server) handleClassify(c *gin.Context) {
	var req struct {
		Variant           string                     `json:"variant" binding:"required"`
		Font              *cardformat.FontDescriptor `json:"font"`
		Extras            cardformat.Extras          `json:"extras"`
		CustomEpisodeMap  bool                       `json:"custom_episode_map"`
		EpisodeTextFormat *string                    `json:"episode_text_format"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "variant is required"})
		return
	}

	rd, err := s.runner.Registry().Get(req.Variant)
	if err != nil {
		c.JSON(404, gin.H{"error": err.Error()})
		return
	}

	font := cardformat.DefaultFont()
	if req.Font != nil {
		font = *req.Font
	}
	format := rd.Metadata().EpisodeTextFormat
	if req.EpisodeTextFormat != nil {
		format = *req.EpisodeTextFormat
	}

	customFont := rd.IsCustomFont(font, req.Extras)
	customSeason := rd.IsCustomSeasonTitles(req.CustomEpisodeMap, format)

	c.JSON(200, gin.H{
		"variant":              rd.Metadata().Identifier,
		"group":                card.ArchiveGroup(rd, font, req.Extras, req.CustomEpisodeMap, format),
		"custom_font":          customFont,
		"custom_season_titles": customSeason,
		"extras":               rd.ModifyExtras(req.Extras, customFont, customSeason),
	})
}

// handleEnqueue queues a batch for background rendering
func (s *Server) handleEnqueue(c *gin.Context) {
	var req cardformat.Batch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": fmt.Sprintf("invalid batch: %v", err)})
		return
	}
	if len(req.Cards) == 0 {
		c.JSON(400, gin.H{"error": "at least one card is required"})
		return
	}

	jobID := s.queue.Enqueue(req.Cards)

	c.JSON(202, gin.H{
		"success": true,
		"job_id":  jobID,
	})
}

// handleGetJobs returns all jobs without their reports
func (s *Server) handleGetJobs(c *gin.Context) {
	jobs := s.queue.GetAllJobs()
	for _, job := range jobs {
		job.Report = nil
	}

	c.JSON(200, gin.H{"jobs": jobs})
}

// handleGetJob returns a specific job
func (s *Server) handleGetJob(c *gin.Context) {
	job := s.queue.GetJob(c.Param("id"))
	if job == nil {
		c.JSON(404, gin.H{"error": "job not found"})
		return
	}

	c.JSON(200, job)
}

// handleGetArchive lists archived cards and group counts
func (s *Server) handleGetArchive(c *gin.Context) {
	if s.archive == nil {
		c.JSON(404, gin.H{"error": "archive is disabled"})
		return
	}

	c.JSON(200, gin.H{
		"entries": s.archive.All(),
		"groups":  s.archive.Groups(),
	})
}

// statusFor maps a card result to an HTTP status
func statusFor(res batch.Result) int {
	switch {
	case res.Status == batch.StatusRendered:
		return 200
	case res.Status == batch.StatusSkipped:
		return 503
	case res.ErrorKind == failure.KindValidation:
		return 400
	case res.ErrorKind == failure.KindResourceMissing:
		return 404
	default:
		return 500
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status())
	}
}
