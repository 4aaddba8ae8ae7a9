package middleware

import (
	"time"

	"github.com/LovationAdmin/superapp-api/utils"

	"github.com/gin-gonic/gin"
)

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		utils.LogAPIRequest(c.Request.Method, path, GetUserID(c), c.Writer.Status(), time.Since(start))
	}
}
