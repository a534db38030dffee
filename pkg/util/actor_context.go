package util

import (
	"github.com/gin-gonic/gin"

	"milestone-service/internal/model"
)

const actorContextKey = "actor"

// SetActor stores the authenticated actor on the gin context.
func SetActor(c *gin.Context, actor model.Actor) {
	c.Set(actorContextKey, actor)
}

// ActorFromContext returns the authenticated actor set by SetActor.
func ActorFromContext(c *gin.Context) (model.Actor, bool) {
	v, exists := c.Get(actorContextKey)
	if !exists {
		return model.Actor{}, false
	}
	actor, ok := v.(model.Actor)
	return actor, ok
}
