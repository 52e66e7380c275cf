package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/yoockh/yoointerview/internal/utils"
)

// Context keys set by JWTAuth.
const (
	KeyUserID      = "user_id"
	KeyEmail       = "email"
	KeyDisplayName = "display_name"
	KeyAccessToken = "access_token"
)

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

type JWTConfig struct {
	Secret   string
	Issuer   string // optional
	Audience string // optional
}

type supabaseClaims struct {
	jwt.RegisteredClaims
	Email        string         `json:"email"`
	Role         string         `json:"role"` // "authenticated" for signed-in users
	UserMetadata map[string]any `json:"user_metadata"`
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{Code: utils.CodeUnauthorized, Message: msg})
}

// JWTAuth verifies Supabase access tokens (HS256) locally. Browsers cannot
// set headers on WebSocket upgrades, so GET requests may pass the token as
// the access_token query parameter.
func JWTAuth(cfg JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.Secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
				Code:    utils.CodeInternal,
				Message: "SUPABASE_JWT_SECRET is not set",
			})
			return
		}

		raw := bearerToken(c)
		if raw == "" {
			unauthorized(c, "missing bearer token")
			return
		}

		claims := &supabaseClaims{}
		tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			return []byte(cfg.Secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil || tok == nil || !tok.Valid {
			unauthorized(c, "invalid token")
			return
		}

		if cfg.Issuer != "" && claims.Issuer != cfg.Issuer {
			unauthorized(c, "invalid token issuer")
			return
		}
		if cfg.Audience != "" && !slices.Contains(claims.Audience, cfg.Audience) {
			unauthorized(c, "invalid token audience")
			return
		}
		if claims.Subject == "" {
			unauthorized(c, "missing subject")
			return
		}

		name, _ := claims.UserMetadata["full_name"].(string)

		c.Set(KeyUserID, claims.Subject)
		c.Set(KeyEmail, claims.Email)
		c.Set(KeyDisplayName, name)
		c.Set(KeyAccessToken, raw)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	if c.Request.Method == http.MethodGet {
		return strings.TrimSpace(c.Query("access_token"))
	}
	return ""
}
