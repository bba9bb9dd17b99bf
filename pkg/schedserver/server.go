// Package schedserver is a reference implementation of the remote scheduling
// service. It keeps tasks in memory and plans them with a greedy
// priority/deadline heuristic.
package schedserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harrisonrobin/taskplan/pkg/model"
	"github.com/rs/zerolog/log"
)

const mod = "schedserver"

type Server struct {
	mu       sync.Mutex
	tasks    []model.Task
	schedule model.Schedule
	now      func() time.Time
	router   *gin.Engine
}

type Option func(*Server)

func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(opts ...Option) *Server {
	s := &Server{now: time.Now, schedule: model.Schedule{}}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(requestLogger())
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.GET("/", s.health)
		api.GET("/tasks", s.listTasks)
		api.POST("/add-task", s.addTask)
		api.DELETE("/task/:id", s.deleteTask)
		api.PUT("/task/:id/complete", s.completeTask)
		api.POST("/generate-schedule", s.generateSchedule)
		api.GET("/schedule", s.currentSchedule)
		api.POST("/clear", s.clear)
	}
	s.router = router
	return s
}

// Handler exposes the router, mostly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("mod", mod).Str("addr", addr).Msg("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Str("mod", mod).Err(err).Send()
		return err
	}
	log.Info().Str("mod", mod).Msg("shutdown")
	return nil
}

func (s *Server) health(c *gin.Context) {
	s.mu.Lock()
	n := len(s.tasks)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"status": "OK", "tasks_count": n})
}

func (s *Server) listTasks(c *gin.Context) {
	s.mu.Lock()
	tasks := append([]model.Task{}, s.tasks...)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "tasks": tasks, "count": len(tasks)})
}

func (s *Server) addTask(c *gin.Context) {
	var task model.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task: " + err.Error()})
		return
	}
	if task.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "description is required"})
		return
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}

	s.mu.Lock()
	if task.ID == 0 {
		task.ID = s.now().UnixMilli()
	}
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "task added", "task": task})
}

func (s *Server) deleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "task deleted"})
}

func (s *Server) completeTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Done = true
			break
		}
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "task completed"})
}

func (s *Server) generateSchedule(c *gin.Context) {
	s.mu.Lock()
	if len(s.tasks) == 0 {
		s.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "no tasks to schedule"})
		return
	}
	schedule := Plan(s.tasks, s.now())
	s.schedule = schedule
	n := len(s.tasks)
	s.mu.Unlock()

	log.Debug().Str("mod", mod).Int("days", len(schedule)).Int("slots", schedule.Slots()).Msg("schedule planned")
	c.JSON(http.StatusOK, gin.H{"success": true, "schedule": schedule, "tasks_count": n})
}

func (s *Server) currentSchedule(c *gin.Context) {
	s.mu.Lock()
	schedule := s.schedule
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "schedule": schedule})
}

func (s *Server) clear(c *gin.Context) {
	s.mu.Lock()
	s.tasks = nil
	s.schedule = model.Schedule{}
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "all data cleared"})
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task id must be an integer"})
		return 0, false
	}
	return id, true
}

func requestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		startTime := time.Now()
		ctx.Next()
		log.
			Info().
			Str("mod", mod).
			Int("code", ctx.Writer.Status()).
			Str("method", ctx.Request.Method).
			Str("path", ctx.Request.RequestURI).
			Str("request_id", ctx.GetHeader("X-Request-Id")).
			TimeDiff("latency", time.Now(), startTime).
			Send()
	}
}
