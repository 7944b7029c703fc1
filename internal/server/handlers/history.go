package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/limitless/internal/archive"
	"github.com/julianstephens/limitless/internal/server/response"
)

type HistoryHandler struct {
	archive *archive.Manager
}

func NewHistoryHandler(manager *archive.Manager) *HistoryHandler {
	return &HistoryHandler{archive: manager}
}

// Dates lists archived days, newest first.
func (h *HistoryHandler) Dates(c *gin.Context) {
	dates, err := h.archive.Dates()
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, dates)
}

func (h *HistoryHandler) Snapshot(c *gin.Context) {
	docs, err := h.archive.Snapshot(c.Param("date"))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, docs)
}

// File serves one archived document. The name may carry a .json suffix.
func (h *HistoryHandler) File(c *gin.Context) {
	name := strings.TrimSuffix(c.Param("file"), ".json")
	doc, err := h.archive.File(c.Param("date"), name)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, doc)
}
