// Package server hosts the editor controller, the uploaded files and the
// operational endpoints behind a single gin engine.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"slices"
	"time"

	"github.com/ahmad-alkadri/editor-depot/internal/ueditor"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options wires the server to its collaborators.
type Options struct {
	Port         string
	Route        string
	StorageRoot  string
	AllowOrigins []string
	Dispatcher   *ueditor.Dispatcher
	Gatherer     prometheus.Gatherer
}

// Server is the HTTP front of the depot.
type Server struct {
	engine *gin.Engine
	server *http.Server
}

// New builds the engine and registers every route. It does not listen yet.
func New(opts Options) (*Server, error) {
	if opts.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher not set")
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(loggingMiddleware())
	engine.Use(cors.New(corsConfig(opts.AllowOrigins)))

	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	engine.Any(opts.Route, ueditor.GinHandler(opts.Dispatcher))

	// everything else is served from the storage root, so stored URLs resolve
	files := http.FileServer(http.Dir(opts.StorageRoot))
	engine.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	})

	return &Server{
		engine: engine,
		server: &http.Server{
			Addr:              ":" + opts.Port,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}, nil
}

// Handler exposes the engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start listens in the background. Errors other than a clean close are logged.
func (s *Server) Start() {
	go func() {
		log.Printf("[server] Listening on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[server] HTTP server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	log.Println("[server] Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Printf("[server] %s %s %d %s", c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

func corsConfig(origins []string) cors.Config {
	conf := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = origins
	}
	conf.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	conf.AllowHeaders = []string{"Origin", "Content-Type", "X-Requested-With"}
	return conf
}
