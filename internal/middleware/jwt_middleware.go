package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quadramall/seller-api/internal/utils"
)

type JWTMiddleware struct{}

func NewJWTMiddleware() *JWTMiddleware {
	return &JWTMiddleware{}
}

func (m *JWTMiddleware) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Error(c, 401, "UNAUTHORIZED", "Missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.Error(c, 401, "UNAUTHORIZED", "Invalid authorization header")
			c.Abort()
			return
		}

		claims, err := utils.ValidateJWT(parts[1])
		if err != nil {
			utils.Error(c, 401, "INVALID_TOKEN", "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set("seller_id", claims.SellerID)
		c.Set("email", claims.Email)
		c.Set("store_ids", claims.StoreIDs)
		c.Next()
	}
}

// SellerID returns the authenticated seller id set by the middleware.
func SellerID(c *gin.Context) int64 {
	if v, ok := c.Get("seller_id"); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
