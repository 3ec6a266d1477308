// Package server exposes diagram rendering and document storage over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tordrt/erdschema/internal/cache"
	"github.com/tordrt/erdschema/internal/diagram"
	"github.com/tordrt/erdschema/internal/formatter"
	"github.com/tordrt/erdschema/internal/layout"
	"github.com/tordrt/erdschema/internal/store"
)

// Config wires the server's collaborators. Cache may be nil.
type Config struct {
	Store        store.Store
	Cache        cache.Cache
	Diagram      diagram.Options
	AllowOrigins []string
}

// Server holds the handlers' dependencies
type Server struct {
	store   store.Store
	cache   cache.Cache
	opts    diagram.Options
	origins []string
}

// New creates a server
func New(cfg Config) *Server {
	return &Server{
		store:   cfg.Store,
		cache:   cfg.Cache,
		opts:    cfg.Diagram,
		origins: cfg.AllowOrigins,
	}
}

// HTTPServer wraps the router in an http.Server listening on port
func (s *Server) HTTPServer(port int) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Router(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(s.corsConfig()))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/diagram", s.renderDiagram)
		api.POST("/schema", s.extractSchema)
	}

	docs := api.Group("/documents")
	{
		docs.GET("", s.listDocuments)
		docs.POST("", s.createDocument)
		docs.GET("/:id", s.getDocument)
		docs.PUT("/:id", s.updateDocument)
		docs.DELETE("/:id", s.deleteDocument)
		docs.GET("/:id/diagram", s.documentDiagram)
	}

	return router
}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	if len(s.origins) == 0 || slices.Contains(s.origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.origins
	}
	return cfg
}

// render builds the diagram for text and positions in the given format,
// going through the cache when one is configured
func (s *Server) render(ctx context.Context, text string, positions layout.Positions, format string) ([]byte, error) {
	// map keys marshal sorted, so equal positions hash equally
	pos, err := json.Marshal(positions)
	if err != nil {
		return nil, fmt.Errorf("failed to encode positions: %w", err)
	}
	key := cache.Key([]byte(format), []byte(text), pos)

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Printf("warning: diagram cache read failed: %v", err)
		} else if ok {
			return cached, nil
		}
	}

	d := diagram.Build(text, positions, s.opts)
	var buf bytes.Buffer
	if err := formatter.Write(&buf, format, d); err != nil {
		return nil, fmt.Errorf("failed to render diagram: %w", err)
	}
	out := buf.Bytes()

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out); err != nil {
			log.Printf("warning: diagram cache write failed: %v", err)
		}
	}
	return out, nil
}

// respondRendered writes JSON output inside the envelope and every other
// format as a raw body
func respondRendered(c *gin.Context, format string, out []byte) {
	if format == "json" {
		success(c, http.StatusOK, json.RawMessage(out), "Diagram generated successfully")
		return
	}
	c.Data(http.StatusOK, formatter.ContentType(format), out)
}

func validFormat(format string) error {
	if !slices.Contains(formatter.Formats, format) {
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}
