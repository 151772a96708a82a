package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/txn2/parrot/pkg/prtapi/types"
)

func errorResponse(c *gin.Context, status int, code, message string) {
	c.JSON(status, types.Response{
		Success: false,
		Error: &types.ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}

func notReady(c *gin.Context, what string) {
	errorResponse(c, http.StatusServiceUnavailable, "NOT_READY", what+" not available")
}

// queryCount reads a positive integer query parameter, falling back to def
// and clamping to max
func queryCount(c *gin.Context, name string, def, max int) int {
	n, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(def)))
	if err != nil || n < 1 {
		n = def
	}
	if n > max {
		n = max
	}
	return n
}
