package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Guards are the per-route middlewares handlers attach when registering.
type Guards struct {
	Required gin.HandlerFunc
	Optional gin.HandlerFunc
	// CreateLimit throttles recipe creation. Nil disables it.
	CreateLimit gin.HandlerFunc
}

func chain(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		notFoundResponse(c)
		return uuid.Nil, false
	}
	return id, true
}
