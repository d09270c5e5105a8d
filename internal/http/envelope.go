package http

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the wire shape of every API response. A populated data
// field signals success; failure carries only a message.
type Envelope struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// respondData sends a success envelope.
func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Data: data})
}

// respondMessage sends a failure envelope with a human-readable reason.
func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Message: message})
}

// respondInternalError logs the error and hides it from the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	respondMessage(c, http.StatusInternalServerError, "internal server error")
}
