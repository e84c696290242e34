package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Message string `json:"message"`
}

func newErrorResponse(c *gin.Context, status int, message string) {
	logrus.WithFields(logrus.Fields{
		"status": status,
		"path":   c.Request.URL.Path,
	}).Error(message)
	c.AbortWithStatusJSON(status, errorResponse{Message: message})
}
