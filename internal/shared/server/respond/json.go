package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON serializes the payload with the supplied status code.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// OK is the 200 shorthand for successful pipeline responses, including
// publish outcomes that carry only a message.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}
