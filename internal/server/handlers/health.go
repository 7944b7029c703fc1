package handlers

import (
	"math"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/limitless/internal/app"
	"github.com/julianstephens/limitless/internal/documents"
	"github.com/julianstephens/limitless/internal/server/response"
)

type HealthHandler struct {
	app *app.App
}

func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{app: a}
}

type healthResponse struct {
	OK            bool    `json:"ok"`
	DataDir       string  `json:"dataDir"`
	Storage       string  `json:"storage"`
	Documents     int     `json:"documents"`
	Snapshots     int     `json:"snapshots"`
	Events        int     `json:"events"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
	Today         string  `json:"today"`
}

// HealthCheck reports liveness and how many documents, snapshots and events are stored.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	p := h.app.Provider

	stored, err := p.ListDocuments()
	if err != nil {
		response.RespondError(c, err)
		return
	}
	docs := 0
	for _, name := range stored {
		if _, ok := documents.Lookup(name); ok {
			docs++
		}
	}

	snapshots, err := p.ListSnapshots()
	if err != nil {
		response.RespondError(c, err)
		return
	}
	events, err := h.app.Events.Count()
	if err != nil {
		response.RespondError(c, err)
		return
	}

	uptime := h.app.Clock.Now().Sub(h.app.Started)
	response.RespondOK(c, healthResponse{
		OK:            true,
		DataDir:       p.GetConfigPath(),
		Storage:       p.Kind(),
		Documents:     docs,
		Snapshots:     len(snapshots),
		Events:        events,
		UptimeSeconds: math.Round(uptime.Seconds()*1000) / 1000,
		Today:         h.app.Today(),
	})
}

