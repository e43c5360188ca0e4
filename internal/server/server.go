// Package server exposes resume parsing and job matching over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spigell/jobfit/internal/jobs"
	"github.com/spigell/jobfit/internal/logger"
	"github.com/spigell/jobfit/internal/matching"
	"github.com/spigell/jobfit/internal/resume"
	"github.com/spigell/jobfit/internal/storage"
	"github.com/spigell/jobfit/internal/textextract"
	"go.uber.org/zap"
)

const (
	defaultMaxUpload = 10 << 20
	shutdownTimeout  = 10 * time.Second
	requestIDHeader  = "X-Request-ID"
)

// ResumeParser turns resume text into a Resume.
type ResumeParser interface {
	Parse(ctx context.Context, text string) (*resume.Resume, error)
}

// Deps wires the server to the matching engine.
type Deps struct {
	Parser    ResumeParser
	Ranker    *matching.Ranker
	Jobs      jobs.Source
	Store     storage.Store
	Mode      matching.Mode
	Logger    *zap.Logger
	MaxUpload int
}

// Server is the HTTP API.
type Server struct {
	app    *fiber.App
	deps   Deps
	logger *zap.Logger
}

type errorResponse struct {
	Message string `json:"message"`
}

// New validates deps and registers the routes.
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Parser == nil:
		return nil, errors.New("server requires a resume parser")
	case deps.Ranker == nil:
		return nil, errors.New("server requires a ranker")
	case deps.Jobs == nil:
		return nil, errors.New("server requires a job source")
	case deps.Store == nil:
		return nil, errors.New("server requires a store")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.MaxUpload <= 0 {
		deps.MaxUpload = defaultMaxUpload
	}
	if deps.Mode == "" {
		deps.Mode = matching.ModeSkills
	}

	s := &Server{deps: deps, logger: deps.Logger}
	s.app = fiber.New(fiber.Config{
		AppName:               "jobfit",
		BodyLimit:             deps.MaxUpload,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(s.accessLog)

	api := s.app.Group("/api")
	api.Get("/health", s.health)

	r := api.Group("/resume")
	r.Post("/upload", s.uploadResume)
	r.Get("/:id", s.getResume)
	r.Get("/:id/improvement", s.getImprovement)

	j := api.Group("/jobs")
	j.Get("/", s.listJobs)
	j.Get("/:id", s.getJob)

	api.Get("/matching/:id/jobs", s.matchJobs)

	return s, nil
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr)
	}()

	s.logger.Info("http server started", zap.String("addr", addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down http server")
		return s.app.ShutdownWithTimeout(shutdownTimeout)
	}
}

func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()

	rid := c.Get(requestIDHeader)
	if rid == "" {
		rid = uuid.NewString()
	}
	c.Set(requestIDHeader, rid)

	err := c.Next()

	s.logger.Debug("http request",
		zap.String("request_id", rid),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)),
	)

	return err
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"

	var (
		fiberErr    *fiber.Error
		unsupported *textextract.UnsupportedFormatError
		extraction  *textextract.ExtractionError
	)

	switch {
	case errors.As(err, &fiberErr):
		status, message = fiberErr.Code, fiberErr.Message
	case errors.As(err, &unsupported):
		status, message = fiber.StatusBadRequest, unsupported.Error()
	case errors.As(err, &extraction):
		status, message = fiber.StatusUnprocessableEntity, extraction.Error()
	case errors.Is(err, storage.ErrNotFound):
		status, message = fiber.StatusNotFound, "resume not found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, message = fiber.StatusServiceUnavailable, "request cancelled"
	}

	if status >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}

	return c.Status(status).JSON(errorResponse{Message: message})
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "message": "jobfit is running"})
}

func (s *Server) uploadResume(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}

	file, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to open uploaded file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "failed to read uploaded file")
	}

	text, err := textextract.Extract(data, fh.Filename)
	if err != nil {
		return err
	}

	r, err := s.deps.Parser.Parse(c.UserContext(), text)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", fh.Filename, err)
	}

	if err := s.deps.Store.SaveResume(c.UserContext(), r); err != nil {
		return fmt.Errorf("saving resume: %w", err)
	}

	return c.Status(fiber.StatusCreated).JSON(r)
}

func (s *Server) getResume(c *fiber.Ctx) error {
	r, err := s.deps.Store.GetResume(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(r)
}

func (s *Server) getImprovement(c *fiber.Ctx) error {
	r, err := s.deps.Store.GetResume(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	listings, err := s.deps.Jobs.List(c.UserContext())
	if err != nil {
		return fmt.Errorf("listing jobs: %w", err)
	}

	return c.JSON(s.deps.Ranker.SuggestImprovements(r, listings.Values()))
}

func (s *Server) listJobs(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 50, 1, 100)
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset", 0, 0, -1)
	if err != nil {
		return err
	}

	listings, err := s.deps.Jobs.List(c.UserContext())
	if err != nil {
		return fmt.Errorf("listing jobs: %w", err)
	}

	values := listings.Values()
	if offset >= len(values) {
		return c.JSON([]jobs.Listing{})
	}
	values = values[offset:]
	if len(values) > limit {
		values = values[:limit]
	}

	return c.JSON(values)
}

func (s *Server) getJob(c *fiber.Ctx) error {
	listings, err := s.deps.Jobs.List(c.UserContext())
	if err != nil {
		return fmt.Errorf("listing jobs: %w", err)
	}

	job := listings.FindByID(c.Params("id"))
	if job == nil {
		return fiber.NewError(fiber.StatusNotFound, "job not found")
	}
	return c.JSON(job)
}

func (s *Server) matchJobs(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit", 10, 1, 50)
	if err != nil {
		return err
	}

	mode := s.deps.Mode
	if m := strings.TrimSpace(c.Query("mode")); m != "" {
		mode = matching.Mode(m)
	}
	if mode != matching.ModeSkills && mode != matching.ModeSemantic {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("unknown matching mode %q", mode))
	}

	ctx := c.UserContext()

	r, err := s.deps.Store.GetResume(ctx, c.Params("id"))
	if err != nil {
		return err
	}

	listings, err := s.deps.Jobs.List(ctx)
	if err != nil {
		return fmt.Errorf("listing jobs: %w", err)
	}

	matches, err := s.deps.Ranker.RankMode(ctx, mode, r, listings.Values(), limit)
	switch {
	case errors.Is(err, matching.ErrNoEmbedder):
		return fiber.NewError(fiber.StatusBadRequest, "semantic matching is not configured")
	case err != nil:
		return fmt.Errorf("ranking jobs: %w", err)
	}

	if err := s.deps.Store.SaveMatches(ctx, r.ID, matches); err != nil {
		s.logger.Warn("saving matches failed", zap.String(logger.FieldResumeID, r.ID), zap.Error(err))
	}

	return c.JSON(matches)
}

// queryInt reads an integer query parameter within [lo, hi]. A negative hi means no upper bound.
func queryInt(c *fiber.Ctx, key string, def, lo, hi int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || (hi >= 0 && n > hi) {
		if hi >= 0 {
			return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s must be an integer between %d and %d", key, lo, hi))
		}
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("%s must be an integer not less than %d", key, lo))
	}
	return n, nil
}
