package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/limitless/internal/errors"
	"github.com/julianstephens/limitless/internal/logger"
)

type ErrorEnvelope struct {
	Error string `json:"error"`
}

// RespondError writes {error: message} with the status mapped from err.
func RespondError(c *gin.Context, err error) {
	status := errors.Status(err)
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: msg})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
