package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bluemoon/internal/apperr"
)

// OK writes {"ok": true} merged with data.
func OK(c *gin.Context, statusCode int, data gin.H) {
	body := gin.H{"ok": true}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(statusCode, body)
}

func Fail(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"ok": false, "message": message})
}

func AbortFail(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{"ok": false, "message": message})
}

// Error maps an application error to its status code. Infrastructure causes
// are recorded on the gin context for the request logger but never sent to
// the client.
func Error(c *gin.Context, err error) {
	status := apperr.StatusCode(err)
	body := gin.H{"ok": false, "message": apperr.Message(err)}

	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		if apperr.IsRetryable(err) {
			body["retryable"] = true
			c.Header("Retry-After", "1")
		}
	}
	c.JSON(status, body)
}

func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, message)
}
