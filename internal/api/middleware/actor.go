package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/taxiops-finance-core/internal/domain/shared"
)

const (
	// ActorIDHeader carries the identity of the user performing the request
	ActorIDHeader = "X-Actor-ID"

	// ActorNameHeader carries the display name of the user
	ActorNameHeader = "X-Actor-Name"

	// ActorKey is the key used to store the actor in the context
	ActorKey = "actor"
)

// ActorIdentity middleware extracts the acting user from request headers.
// Identity is not authenticated here; the upstream gateway is expected to
// have done that. Requests with no actor headers are stamped as system.
func ActorIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := shared.Actor{
			ID:   c.GetHeader(ActorIDHeader),
			Name: c.GetHeader(ActorNameHeader),
		}
		if actor.ID == "" {
			actor = shared.SystemActor
		}

		c.Set(ActorKey, actor)
		c.Next()
	}
}

// GetActor retrieves the acting user from the gin context if present
func GetActor(c *gin.Context) shared.Actor {
	if v, exists := c.Get(ActorKey); exists {
		if actor, ok := v.(shared.Actor); ok {
			return actor
		}
	}
	return shared.SystemActor
}
