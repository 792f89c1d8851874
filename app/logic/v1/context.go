package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/civitas-ai/civitas-ai/pkg/types"
)

// USER_CONTEXT_KEY locates the caller identity the middleware parsed
// from the request headers.
const USER_CONTEXT_KEY = "__user_context"

// InjectUserContext returns the caller identity, or nil for anonymous
// internal calls.
func InjectUserContext(c *gin.Context) *types.UserContext {
	value, exist := c.Get(USER_CONTEXT_KEY)
	if !exist {
		return nil
	}
	userContext, ok := value.(*types.UserContext)
	if !ok {
		return nil
	}
	return userContext
}
