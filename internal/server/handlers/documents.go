package handlers

import (
	stderrors "errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/limitless/internal/daily"
	"github.com/julianstephens/limitless/internal/documents"
	"github.com/julianstephens/limitless/internal/errors"
	"github.com/julianstephens/limitless/internal/server/response"
)

type DocumentHandler struct {
	docs *daily.Service
}

func NewDocumentHandler(docs *daily.Service) *DocumentHandler {
	return &DocumentHandler{docs: docs}
}

// Get serves the stored document, or its stub when nothing valid is stored.
func (h *DocumentHandler) Get(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := h.docs.Get(name)
		if err != nil {
			response.RespondError(c, err)
			return
		}
		response.RespondOK(c, doc)
	}
}

// Merge applies the request body as a field-merge update.
func (h *DocumentHandler) Merge(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := readPayload(c)
		if err != nil {
			response.RespondError(c, err)
			return
		}
		doc, err := h.docs.Merge(name, payload)
		if err != nil {
			response.RespondError(c, err)
			return
		}
		response.RespondOK(c, gin.H{"ok": true, "document": doc})
	}
}

// Stamped merges the body after defaulting field to now, e.g. startedAt
// for POST /work-sessions/start.
func (h *DocumentHandler) Stamped(name, field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := readPayload(c)
		if err != nil {
			response.RespondError(c, err)
			return
		}
		doc, err := h.docs.MergeStamped(name, field, payload)
		if err != nil {
			response.RespondError(c, err)
			return
		}
		response.RespondOK(c, gin.H{"ok": true, "document": doc})
	}
}

// readPayload binds the body as a merge payload. An empty or null body is
// an empty payload.
func readPayload(c *gin.Context) (documents.Document, error) {
	var payload documents.Document
	if err := c.ShouldBindJSON(&payload); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.Invalid("request body must be a JSON object")
	}
	if payload == nil {
		payload = documents.Document{}
	}
	return payload, nil
}
