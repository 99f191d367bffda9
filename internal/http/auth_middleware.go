package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"techmart-assistant/internal/service"
)

type userIDKey struct{}

// WithUserID devuelve un contexto que identifica al usuario autenticado.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext obtiene el usuario que dejo RequireUser en el request.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey{}).(string)
	return userID, ok && userID != ""
}

// RequireUser exige un access token valido y deja el userID en el contexto del request.
// Los rechazos usan el mismo cuerpo {"error": ...} que el resto de /api/chat.
func RequireUser(tokens *service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokens == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured"})
			return
		}

		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
			return
		}
		claims, err := tokens.ParseAccessToken(raw)
		if err != nil || strings.TrimSpace(claims.UserID) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// bearerToken extrae el token de "Bearer <token>"; el esquema no distingue mayusculas.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// currentUser responde 401 cuando el handler se monto sin RequireUser.
func currentUser(c *gin.Context) (string, bool) {
	userID, ok := UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
	}
	return userID, ok
}
