package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs every request and recovers panics into a structured 500.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		defer func() {
			if recovered := recover(); recovered != nil {
				logRequest(c, start, fmt.Sprintf("panic: %v", recovered))
				log.Printf("panic_stack %s", debug.Stack())

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": "Internal Server Error",
					},
				})
				return
			}

			msg := ""
			if len(c.Errors) > 0 {
				msg = c.Errors.String()
			}
			logRequest(c, start, msg)
		}()

		c.Next()
	}
}

func logRequest(c *gin.Context, start time.Time, errMsg string) {
	log.Printf(
		"request method=%s path=%s status=%d client_ip=%s user_id=%d latency=%s error=%q",
		c.Request.Method,
		c.Request.URL.Path,
		c.Writer.Status(),
		c.ClientIP(),
		c.GetInt64("user_id"),
		time.Since(start),
		errMsg,
	)
}
