package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"publishing-backend/internal/domains/account"
)

const ContextKeyActor = "actor"

// ActorResolver load identity từ user_id trong token (account.Service implement)
type ActorResolver interface {
	ResolveActor(ctx context.Context, id uuid.UUID) (*account.Identity, error)
}

// CurrentActor trả về actor đã load, nil nếu anonymous
func CurrentActor(c *gin.Context) *account.Identity {
	value, exists := c.Get(ContextKeyActor)
	if !exists {
		return nil
	}
	actor, _ := value.(*account.Identity)
	return actor
}

// RequireActor dùng trong handler sau AuthMiddleware.
// Nếu route bị cấu hình thiếu AuthMiddleware thì trả 401 thay vì panic.
func RequireActor(c *gin.Context) (*account.Identity, bool) {
	actor := CurrentActor(c)
	if actor == nil {
		abortWithError(c, ErrMissingToken)
		return nil, false
	}
	return actor, true
}
