package handlers

import (
	stderrors "errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/limitless/internal/errors"
)

// bindJSON decodes the body into v. An empty body leaves v untouched.
func bindJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil && !stderrors.Is(err, io.EOF) {
		return errors.Invalid("invalid JSON body: %v", err)
	}
	return nil
}
