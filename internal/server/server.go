// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the review pipeline over HTTP with gin. Reviews run
// in the background and are polled by id; single-source searches answer
// synchronously. Jobs live in memory for the life of the process.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/litreview/internal/review"
	"github.com/pdiddy/litreview/internal/source"
	"github.com/pdiddy/litreview/pkg/types"
)

// Reviewer starts a background review.
type Reviewer interface {
	Start(ctx context.Context, topic string) <-chan review.Result
}

// Searcher queries one source.
type Searcher interface {
	Search(ctx context.Context, src types.Source, query string, maxResults int, scrape bool) (source.Outcome, review.Tier)
}

// Status is the lifecycle state of a review job.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Job is one review request.
type Job struct {
	ID       uuid.UUID      `json:"id"`
	Topic    string         `json:"topic"`
	Status   Status         `json:"status"`
	Review   *review.Review `json:"review,omitempty"`
	Error    string         `json:"error,omitempty"`
	Created  time.Time      `json:"created"`
	Finished *time.Time     `json:"finished,omitempty"`
}

// CreateReviewRequest is the body of POST /api/reviews.
type CreateReviewRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// SearchResponse is the body returned by GET /api/sources/:source.
type SearchResponse struct {
	Source  types.Source   `json:"source"`
	Query   string         `json:"query"`
	Tier    review.Tier    `json:"tier,omitempty"`
	Kind    string         `json:"kind"`
	Records []types.Record `json:"records"`
}

// Server holds the job table and the collaborators.
type Server struct {
	cfg        types.ServerConfig
	reviewer   Reviewer
	searcher   Searcher
	maxResults int
	log        *zap.Logger

	// base outlives individual requests; review jobs run under it.
	base context.Context

	// runMu serializes reviews; the composer session is shared.
	runMu sync.Mutex

	mu   sync.RWMutex
	jobs map[uuid.UUID]*Job
}

// New returns a server; call Handler or Run to serve it.
func New(ctx context.Context, cfg types.ServerConfig, reviewer Reviewer, searcher Searcher, maxResults int, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if maxResults <= 0 {
		maxResults = source.DefaultMaxResults
	}
	return &Server{
		cfg:        cfg,
		reviewer:   reviewer,
		searcher:   searcher,
		maxResults: maxResults,
		log:        log,
		base:       ctx,
		jobs:       make(map[uuid.UUID]*Job),
	}
}

// Handler builds the gin engine with CORS and all routes.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	origins := s.cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api := r.Group("/api")
	{
		api.POST("/reviews", s.createReview)
		api.GET("/reviews", s.listReviews)
		api.GET("/reviews/:id", s.getReview)
		api.GET("/sources/:source", s.searchSource)
	}
	return r
}

// Run serves on cfg.Addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("server listening", zap.String("addr", s.cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) createReview(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job := &Job{ID: uuid.New(), Topic: req.Topic, Status: StatusQueued, Created: time.Now()}
	s.mu.Lock()
	s.jobs[job.ID] = job
	snapshot := *job
	s.mu.Unlock()

	go s.runJob(job.ID, req.Topic)

	c.JSON(http.StatusAccepted, snapshot)
}

func (s *Server) runJob(id uuid.UUID, topic string) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.update(id, func(j *Job) { j.Status = StatusRunning })
	res := <-s.reviewer.Start(s.base, topic)

	s.update(id, func(j *Job) {
		now := time.Now()
		j.Finished = &now
		if res.Err != nil {
			j.Status = StatusFailed
			j.Error = res.Err.Error()
			return
		}
		j.Status = StatusDone
		rev := res.Review
		j.Review = &rev
	})
	if res.Err != nil {
		s.log.Warn("review job failed", zap.String("job_id", id.String()), zap.Error(res.Err))
	} else {
		s.log.Info("review job finished", zap.String("job_id", id.String()))
	}
}

func (s *Server) update(id uuid.UUID, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		fn(j)
	}
}

func (s *Server) listReviews(c *gin.Context) {
	s.mu.RLock()
	jobs := make([]Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		summary := *j
		summary.Review = nil
		jobs = append(jobs, summary)
	}
	s.mu.RUnlock()
	c.JSON(http.StatusOK, jobs)
}

func (s *Server) getReview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid"})
		return
	}
	s.mu.RLock()
	j, ok := s.jobs[id]
	var snapshot Job
	if ok {
		snapshot = *j
	}
	s.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "review not found"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) searchSource(c *gin.Context) {
	src, err := review.ParseSource(c.Param("source"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
		return
	}
	max := s.maxResults
	if v := c.Query("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "max must be a positive integer"})
			return
		}
		max = n
	}
	scrape, _ := strconv.ParseBool(c.Query("scrape"))

	out, tier := s.searcher.Search(c.Request.Context(), src, query, max, scrape)
	c.JSON(http.StatusOK, SearchResponse{
		Source:  src,
		Query:   query,
		Tier:    tier,
		Kind:    out.Kind.String(),
		Records: out.Records,
	})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
