// Package server exposes the localhost control API used by the window/tray
// layer and the CLI. Endpoints:
//
//	GET  {basePath}/status    backend snapshot
//	POST {basePath}/start     start the backend (idempotent)
//	POST {basePath}/stop      stop the backend (idempotent)
//	POST {basePath}/restart   stop then start
//	GET  {basePath}/events    recent lifecycle journal entries
//	GET  {basePath}/healthz   control server liveness
//
// basePath may be empty or start with '/'; no trailing slash.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/krya-ai/shell/internal/history"
	"github.com/krya-ai/shell/internal/respath"
	"github.com/krya-ai/shell/internal/supervisor"
)

type Router struct {
	sup      *supervisor.Supervisor
	hist     history.Sink
	basePath string
}

// NewRouter constructs a Router. hist may be nil when the journal is off.
func NewRouter(sup *supervisor.Supervisor, hist history.Sink, basePath string) *Router {
	if hist == nil {
		hist = history.Nop{}
	}
	return &Router{sup: sup, hist: hist, basePath: sanitizeBase(basePath)}
}

// Handler returns an http.Handler powered by gin that can be mounted in any
// server/mux.
func (r *Router) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery())
	group := g.Group(r.basePath)
	group.GET("/status", r.handleStatus)
	group.POST("/start", r.handleStart)
	group.POST("/stop", r.handleStop)
	group.POST("/restart", r.handleRestart)
	group.GET("/events", r.handleEvents)
	group.GET("/healthz", r.handleHealthz)
	return g
}

// NewServer starts a standalone control server on addr using this router.
func NewServer(addr, basePath string, sup *supervisor.Supervisor, hist history.Sink) *http.Server {
	r := NewRouter(sup, hist, basePath)
	server := &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() { _ = server.ListenAndServe() }()
	return server
}

type errorResp struct {
	Error string `json:"error"`
}

type okResp struct {
	OK bool `json:"ok"`
}

func (r *Router) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, r.sup.Status())
}

func (r *Router) handleStart(c *gin.Context) {
	if err := r.sup.Start(c.Request.Context()); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, respath.ErrEntryPointNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, okResp{OK: true})
}

func (r *Router) handleStop(c *gin.Context) {
	r.sup.Stop()
	c.JSON(http.StatusOK, okResp{OK: true})
}

func (r *Router) handleRestart(c *gin.Context) {
	if err := r.sup.Restart(c.Request.Context()); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, respath.ErrEntryPointNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, errorResp{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, okResp{OK: true})
}

func (r *Router) handleEvents(c *gin.Context) {
	limit := 50
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, errorResp{Error: "invalid limit"})
			return
		}
		limit = n
	}
	events, err := r.hist.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResp{Error: err.Error()})
		return
	}
	if events == nil {
		events = []history.Event{}
	}
	c.JSON(http.StatusOK, events)
}

func (r *Router) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, okResp{OK: true})
}

func sanitizeBase(basePath string) string {
	if basePath == "" || basePath == "/" {
		return ""
	}
	if basePath[0] != '/' {
		basePath = "/" + basePath
	}
	for len(basePath) > 1 && basePath[len(basePath)-1] == '/' {
		basePath = basePath[:len(basePath)-1]
	}
	return basePath
}
