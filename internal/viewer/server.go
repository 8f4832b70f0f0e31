package viewer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/YahyaHajji/Pert-Diagram-generation/internal/cpm"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/export"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/graph"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/planner"
	"github.com/YahyaHajji/Pert-Diagram-generation/internal/project"
)

// Options configures the HTTP server.
type Options struct {
	Logger           zerolog.Logger
	Plan             planner.PlanConfig
	MaxCriticalPaths int
}

// Server holds the most recently computed plan and serves it over HTTP.
type Server struct {
	opts   Options
	engine *gin.Engine

	mu    sync.RWMutex
	plan  *planner.ProjectPlan
	graph *Graph
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error   string   `json:"error"`
	Kind    string   `json:"kind"`
	TaskIDs []string `json:"task_ids,omitempty"`
}

// New creates a Server and registers its routes.
func New(opts Options) *Server {
	switch {
	case gin.Mode() == gin.TestMode:
	case zerolog.GlobalLevel() <= zerolog.DebugLevel:
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{opts: opts, engine: gin.New()}
	s.engine.Use(recovery(opts.Logger), requestLogger(opts.Logger))

	s.engine.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	s.engine.POST("/schedule", s.handlePostSchedule)
	s.engine.POST("/sample", s.handlePostSample)
	s.engine.GET("/plan", s.withPlan(s.handleGetPlan))
	s.engine.GET("/graph", s.withPlan(s.handleGetGraph))
	s.engine.GET("/tasks/:id", s.withPlan(s.handleGetTask))
	s.engine.GET("/export/:format", s.withPlan(s.handleExport))
	s.engine.GET("/report", s.withPlan(s.handleReport))
	s.engine.GET("/dot", s.withPlan(s.handleDOT))

	return s
}

// Handler returns the router for use with net/http or httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Load schedules tasks and makes the result the current plan.
func (s *Server) Load(tasks []project.Task) (*Graph, error) {
	return s.load(tasks, s.opts.MaxCriticalPaths)
}

func (s *Server) load(tasks []project.Task, maxPaths int) (*Graph, error) {
	plan, _, err := planner.FromTasks(tasks, s.opts.Plan, cpm.WithMaxCriticalPaths(maxPaths))
	if err != nil {
		return nil, err
	}
	g := ToGraph(plan)

	s.mu.Lock()
	s.plan = plan
	s.graph = g
	s.mu.Unlock()

	s.opts.Logger.Info().
		Int("tasks", len(plan.Rows)).
		Float64("duration", plan.Summary.ProjectDuration).
		Str("critical_path", plan.Summary.CriticalPath).
		Msg("schedule loaded")
	return g, nil
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.opts.Logger.Info().Str("addr", ln.Addr().String()).Msg("HTTP server started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.opts.Logger.Info().Msg("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func (s *Server) handlePostSchedule(c *gin.Context) {
	maxPaths := s.opts.MaxCriticalPaths
	if v := c.Query("max_critical_paths"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, errorBody{Error: "max_critical_paths must be a positive integer", Kind: "bad_request"})
			return
		}
		maxPaths = n
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error(), Kind: "bad_request"})
		return
	}
	tasks, err := project.ParseJSON(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error(), Kind: "parse"})
		return
	}

	g, err := s.load(tasks, maxPaths)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (s *Server) handlePostSample(c *gin.Context) {
	g, err := s.Load(project.Sample())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

// writeError maps invalid-project errors to 422 with the offending ids and
// everything else to 500.
func (s *Server) writeError(c *gin.Context, err error) {
	if errors.Is(err, graph.ErrInvalidProject) {
		c.JSON(http.StatusUnprocessableEntity, errorBody{
			Error:   err.Error(),
			Kind:    graph.Kind(err),
			TaskIDs: graph.TaskIDs(err),
		})
		return
	}
	s.opts.Logger.Error().Err(err).Msg("schedule failed")
	c.JSON(http.StatusInternalServerError, errorBody{Error: err.Error(), Kind: "internal"})
}

// withPlan rejects the request with 404 until a schedule has been loaded.
func (s *Server) withPlan(h func(*gin.Context, *planner.ProjectPlan, *Graph)) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.RLock()
		plan, g := s.plan, s.graph
		s.mu.RUnlock()

		if plan == nil {
			c.JSON(http.StatusNotFound, errorBody{Error: "no schedule loaded", Kind: "not_found"})
			return
		}
		h(c, plan, g)
	}
}

func (s *Server) handleGetPlan(c *gin.Context, plan *planner.ProjectPlan, _ *Graph) {
	c.JSON(http.StatusOK, plan)
}

func (s *Server) handleGetGraph(c *gin.Context, _ *planner.ProjectPlan, g *Graph) {
	c.JSON(http.StatusOK, g)
}

func (s *Server) handleGetTask(c *gin.Context, _ *planner.ProjectPlan, g *Graph) {
	n, ok := g.node(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, errorBody{Error: "unknown task " + c.Param("id"), Kind: "not_found"})
		return
	}
	c.JSON(http.StatusOK, n)
}

func (s *Server) handleExport(c *gin.Context, plan *planner.ProjectPlan, _ *Graph) {
	f, err := export.ParseFormat(c.Param("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody{Error: err.Error(), Kind: "bad_request"})
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, plan, f); err != nil {
		s.writeError(c, err)
		return
	}

	contentType := "application/json"
	if f == export.FormatCSV {
		contentType = "text/csv; charset=utf-8"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="pert_tasks.%s"`, f))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (s *Server) handleReport(c *gin.Context, plan *planner.ProjectPlan, _ *Graph) {
	report, err := planner.RenderReport(plan, s.opts.Plan.ReportTemplatePath)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(report))
}

func (s *Server) handleDOT(c *gin.Context, plan *planner.ProjectPlan, g *Graph) {
	var buf bytes.Buffer
	if err := WriteDOT(&buf, g, plan.Config.Precision); err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/vnd.graphviz; charset=utf-8", buf.Bytes())
}
