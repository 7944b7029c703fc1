package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/limitless/internal/errors"
	"github.com/julianstephens/limitless/internal/logger"
	"github.com/julianstephens/limitless/internal/server/response"
	"github.com/julianstephens/limitless/internal/votes"
)

type VoteHandler struct {
	votes *votes.Service
}

func NewVoteHandler(service *votes.Service) *VoteHandler {
	return &VoteHandler{votes: service}
}

type appendVotesRequest struct {
	Votes []json.RawMessage `json:"votes"`
}

// Append stores every valid vote of the body. Votes that do not decode or
// fail validation are dropped.
func (h *VoteHandler) Append(c *gin.Context) {
	var req appendVotesRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondError(c, err)
		return
	}
	if req.Votes == nil {
		response.RespondError(c, errors.Invalid("votes array required"))
		return
	}

	inputs := make([]votes.Input, 0, len(req.Votes))
	for i, raw := range req.Votes {
		var in votes.Input
		if err := json.Unmarshal(raw, &in); err != nil {
			logger.Debug("Dropping undecodable vote", "index", i, "error", err)
			continue
		}
		inputs = append(inputs, in)
	}

	added, err := h.votes.Append(inputs)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true, "added": len(added), "votes": added})
}
