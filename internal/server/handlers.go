package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tordrt/erdschema/internal/ddl"
	"github.com/tordrt/erdschema/internal/layout"
	"github.com/tordrt/erdschema/internal/store"
)

// DiagramRequest is the body of POST /api/v1/diagram
type DiagramRequest struct {
	Text      string           `json:"text"`
	Positions layout.Positions `json:"positions"`
}

// SchemaRequest is the body of POST /api/v1/schema
type SchemaRequest struct {
	Text string `json:"text"`
}

// renderDiagram handles POST /api/v1/diagram?format=json
func (s *Server) renderDiagram(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	if err := validFormat(format); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid format")
		return
	}

	var req DiagramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	out, err := s.render(c.Request.Context(), req.Text, req.Positions, format)
	if err != nil {
		fail(c, http.StatusInternalServerError, err, "Failed to generate diagram")
		return
	}
	respondRendered(c, format, out)
}

// extractSchema handles POST /api/v1/schema
func (s *Server) extractSchema(c *gin.Context) {
	var req SchemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	success(c, http.StatusOK, ddl.Extract(req.Text), "Schema extracted successfully")
}

// listDocuments handles GET /api/v1/documents
func (s *Server) listDocuments(c *gin.Context) {
	docs, err := s.store.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err, "Failed to list documents")
		return
	}
	success(c, http.StatusOK, docs, "")
}

// createDocument handles POST /api/v1/documents
func (s *Server) createDocument(c *gin.Context) {
	var doc store.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	doc.ID = ""

	if err := s.store.Save(c.Request.Context(), &doc); err != nil {
		fail(c, http.StatusInternalServerError, err, "Failed to save document")
		return
	}
	success(c, http.StatusCreated, doc, "Document created successfully")
}

// getDocument handles GET /api/v1/documents/:id
func (s *Server) getDocument(c *gin.Context) {
	doc, ok := s.loadDocument(c)
	if !ok {
		return
	}
	success(c, http.StatusOK, doc, "")
}

// updateDocument handles PUT /api/v1/documents/:id
func (s *Server) updateDocument(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var doc store.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	if _, err := s.store.Get(ctx, id); err != nil {
		s.storeError(c, err)
		return
	}

	doc.ID = id
	if err := s.store.Save(ctx, &doc); err != nil {
		fail(c, http.StatusInternalServerError, err, "Failed to save document")
		return
	}
	success(c, http.StatusOK, doc, "Document updated successfully")
}

// deleteDocument handles DELETE /api/v1/documents/:id
func (s *Server) deleteDocument(c *gin.Context) {
	if err := s.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.storeError(c, err)
		return
	}
	success(c, http.StatusOK, nil, "Document deleted successfully")
}

// documentDiagram handles GET /api/v1/documents/:id/diagram?format=json
func (s *Server) documentDiagram(c *gin.Context) {
	format := c.DefaultQuery("format", "json")
	if err := validFormat(format); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid format")
		return
	}

	doc, ok := s.loadDocument(c)
	if !ok {
		return
	}

	out, err := s.render(c.Request.Context(), doc.Text, doc.Positions, format)
	if err != nil {
		fail(c, http.StatusInternalServerError, err, "Failed to generate diagram")
		return
	}
	respondRendered(c, format, out)
}

func (s *Server) loadDocument(c *gin.Context) (*store.Document, bool) {
	doc, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return nil, false
	}
	return doc, true
}

func (s *Server) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		fail(c, http.StatusNotFound, err, "Document not found")
	case errors.Is(err, store.ErrUnsupportedVersion):
		fail(c, http.StatusUnprocessableEntity, err, "Document was saved in an unsupported format")
	default:
		fail(c, http.StatusInternalServerError, err, "Document store failed")
	}
}
