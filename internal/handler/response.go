// Package handler exposes the HTTP API. Handlers bind JSON payloads, call
// into the domain services and map domain errors onto the response envelope.
package handler

import (
	"github.com/gin-gonic/gin"
)

// envelope is the uniform JSON shape of every API response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Success: true, Message: message, Data: data})
}

// respondError writes the failure envelope. The raw error text is only
// exposed outside release mode.
func respondError(c *gin.Context, status int, message string, err error) {
	e := envelope{Success: false, Message: message}
	if err != nil && gin.Mode() != gin.ReleaseMode {
		e.Error = err.Error()
	}
	c.AbortWithStatusJSON(status, e)
}
