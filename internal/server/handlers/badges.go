package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/julianstephens/limitless/internal/badges"
	"github.com/julianstephens/limitless/internal/errors"
	"github.com/julianstephens/limitless/internal/server/response"
)

type BadgeHandler struct {
	engine *badges.Engine
}

func NewBadgeHandler(engine *badges.Engine) *BadgeHandler {
	return &BadgeHandler{engine: engine}
}

func (h *BadgeHandler) Catalog(c *gin.Context) {
	response.RespondOK(c, gin.H{"badges": h.engine.Catalog().Badges})
}

func (h *BadgeHandler) MissionCatalog(c *gin.Context) {
	response.RespondOK(c, gin.H{"missions": h.engine.Catalog().Missions})
}

type exerciseRequest struct {
	BadgeSlug  string `json:"badgeSlug"`
	ExerciseID string `json:"exerciseId"`
}

func (h *BadgeHandler) RecordExercise(c *gin.Context) {
	var req exerciseRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	if req.BadgeSlug == "" || req.ExerciseID == "" {
		response.RespondError(c, errors.Invalid("badgeSlug and exerciseId required"))
		return
	}
	result, err := h.engine.RecordExercise(req.BadgeSlug, req.ExerciseID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, result)
}

type assignRequest struct {
	BadgeSlugs []string `json:"badgeSlugs"`
}

func (h *BadgeHandler) AssignMissions(c *gin.Context) {
	var req assignRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	missions, err := h.engine.AssignMissions(req.BadgeSlugs)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, missions)
}

type completeRequest struct {
	MissionID string `json:"missionId"`
	Status    string `json:"status"`
	Notes     string `json:"notes"`
}

func (h *BadgeHandler) CompleteMission(c *gin.Context) {
	var req completeRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	result, err := h.engine.CompleteMission(req.MissionID, req.Status, req.Notes)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, result)
}

func (h *BadgeHandler) RecordBossEncounter(c *gin.Context) {
	var req badges.BossInput
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	result, err := h.engine.RecordBossEncounter(req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, result)
}

type vfGameRequest struct {
	Affirmations []badges.Affirmation `json:"affirmations"`
}

func (h *BadgeHandler) PlayVFGame(c *gin.Context) {
	var req vfGameRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	result, err := h.engine.PlayVFGame(req.Affirmations)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, result)
}
