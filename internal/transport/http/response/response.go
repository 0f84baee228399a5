package response

import "github.com/gin-gonic/gin"

// The wire format is plain-text oriented: successes carry domain payloads,
// failures are always a bare {"error": "..."} envelope.

func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"error": message})
}

func AskOK(c *gin.Context, text string) {
	c.JSON(200, gin.H{
		"response": gin.H{"text": text},
	})
}
