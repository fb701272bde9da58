package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"publishing-backend/internal/shared/apperr"
	"publishing-backend/internal/shared/response"
	"publishing-backend/pkg/jwt"
)

// Context keys
const (
	ContextKeyUserID          = "user_id"
	ContextKeyIsAuthenticated = "is_authenticated"
)

var (
	ErrMissingToken = apperr.Unauthenticated("MISSING_TOKEN", "Missing authorization header")
	ErrInvalidToken = apperr.Unauthenticated("INVALID_TOKEN", "Invalid or expired token")
)

// AuthMiddleware bắt buộc access token hợp lệ và actor còn active.
// Set: user_id, is_authenticated, actor
func AuthMiddleware(tokens *jwt.Manager, actors ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		// STEP 1: Extract "Bearer <token>"
		token, ok := bearerToken(c)
		if !ok {
			abortWithError(c, ErrMissingToken)
			return
		}

		// STEP 2: Verify access token
		userID, err := parseAccessToken(tokens, token)
		if err != nil {
			abortWithError(c, ErrInvalidToken)
			return
		}

		// STEP 3: Load actor - user bị xóa/deactivate sau khi token được cấp
		actor, err := actors.ResolveActor(c.Request.Context(), userID)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(ContextKeyIsAuthenticated, true)
		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyActor, actor)

		c.Next()
	}
}

// OptionalAuthMiddleware cho public endpoints: token thiếu/sai => anonymous, không báo lỗi
func OptionalAuthMiddleware(tokens *jwt.Manager, actors ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyIsAuthenticated, false)

		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		userID, err := parseAccessToken(tokens, token)
		if err != nil {
			c.Next()
			return
		}

		actor, err := actors.ResolveActor(c.Request.Context(), userID)
		if err != nil {
			// Lỗi hạ tầng vẫn phải báo, còn user không hợp lệ thì coi như anonymous
			if apperr.KindOf(err) == apperr.KindInternal {
				abortWithError(c, err)
				return
			}
			c.Next()
			return
		}

		c.Set(ContextKeyIsAuthenticated, true)
		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyActor, actor)

		c.Next()
	}
}

// ===================================
// HELPERS
// ===================================

// GetAuthenticatedUserID returns (userID, true) if authenticated, (nil, false) if anonymous
func GetAuthenticatedUserID(c *gin.Context) (*uuid.UUID, bool) {
	if !IsAuthenticated(c) {
		return nil, false
	}

	value, exists := c.Get(ContextKeyUserID)
	if !exists {
		return nil, false
	}

	uid, ok := value.(uuid.UUID)
	if !ok {
		return nil, false
	}

	return &uid, true
}

func IsAuthenticated(c *gin.Context) bool {
	return c.GetBool(ContextKeyIsAuthenticated)
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

func parseAccessToken(tokens *jwt.Manager, token string) (uuid.UUID, error) {
	claims, err := tokens.ValidateAccessToken(token)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(claims.UserID)
}

func abortWithError(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}
