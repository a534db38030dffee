package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"milestone-service/internal/model"
	"milestone-service/pkg/util"
)

// RequireAuth resolves the calling actor from the bearer token. No actor
// means the request is rejected before any aggregate load happens.
func RequireAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		userID, email, err := util.ParseJWT(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		util.SetActor(c, model.Actor{ID: userID, Email: email})
		c.Next()
	}
}

// ActorFromContext returns the authenticated actor set by RequireAuth.
func ActorFromContext(c *gin.Context) (model.Actor, bool) {
	return util.ActorFromContext(c)
}
