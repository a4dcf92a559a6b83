package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bgmanu2426/playnex-backend/pkg/auth"
	"github.com/bgmanu2426/playnex-backend/pkg/responses"
)

const claimsKey = "authClaims"

// AccessTokenCookie is the cookie login sets; the middleware falls back
// to it when no Authorization header is present.
const AccessTokenCookie = "accessToken"

// RequireAuth validates the bearer access token (header or cookie) and
// stores the claims on the request context. It never touches the
// database; handlers resolve the user themselves when they need more
// than the identity.
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			responses.Error(c, http.StatusUnauthorized, "authentication required")
			return
		}

		claims, err := tokens.ValidateAccessToken(tokenString)
		if err != nil {
			responses.Error(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}

// GetClaims returns the claims RequireAuth stored, if any.
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

// CurrentUserID parses the authenticated user's ObjectID out of the
// claims. False means the route was not behind RequireAuth.
func CurrentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	claims, ok := GetClaims(c)
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
