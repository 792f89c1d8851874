package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/civitas-ai/civitas-ai/app/logic/v1"
	"github.com/civitas-ai/civitas-ai/app/response"
	"github.com/civitas-ai/civitas-ai/pkg/i18n"
	"github.com/civitas-ai/civitas-ai/pkg/types"
)

func I18n() gin.HandlerFunc {
	var allowList []string
	for k := range i18n.ALLOW_LANG {
		allowList = append(allowList, k)
	}
	l := i18n.NewLocalizer(allowList...)

	return response.ProvideResponseLocalizer(l)
}

const (
	TENANT_ID_HEADER_KEY = "X-Tenant-ID"
	USER_ID_HEADER_KEY   = "X-User-ID"
)

// UserContext parses the caller identity headers forwarded by the
// platform gateway. Both headers are optional; the data layer trusts
// its internal callers.
func UserContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.Request.Header.Get(TENANT_ID_HEADER_KEY)
		userID := c.Request.Header.Get(USER_ID_HEADER_KEY)
		if tenantID == "" && userID == "" {
			return
		}
		c.Set(v1.USER_CONTEXT_KEY, &types.UserContext{
			UserID:   userID,
			TenantID: tenantID,
		})
	}
}

func Cors(c *gin.Context) {
	origin := c.Request.Header.Get("Origin")
	if origin != "" {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, UPDATE")
		c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization, X-Tenant-ID, X-User-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Access-Control-Allow-Origin, Access-Control-Allow-Headers, Cache-Control, Content-Language, Content-Type")
		c.Header("Access-Control-Allow-Credentials", "true")
	}
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
	}
	c.Next()
}
