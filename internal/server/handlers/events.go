package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/julianstephens/limitless/internal/errors"
	"github.com/julianstephens/limitless/internal/events"
	"github.com/julianstephens/limitless/internal/server/response"
)

// EventHandler serves an append-only record log.
type EventHandler struct {
	log *events.Log
}

func NewEventHandler(log *events.Log) *EventHandler {
	return &EventHandler{log: log}
}

type appendEventsRequest struct {
	Events []map[string]any `json:"events"`
}

func (h *EventHandler) List(c *gin.Context) {
	records, err := h.log.All()
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, records)
}

func (h *EventHandler) Append(c *gin.Context) {
	var req appendEventsRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	if req.Events == nil {
		response.RespondError(c, errors.Invalid("events array required"))
		return
	}
	added, err := h.log.Append(req.Events)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "added": added})
}
