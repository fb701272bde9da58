package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"publishing-backend/internal/config"
)

type corsLogger struct{}

func (corsLogger) Printf(format string, args ...interface{}) {
	log.Debug().Msg(fmt.Sprintf("CORS: %s", fmt.Sprintf(format, args...)))
}

// CORS bọc rs/cors thành gin middleware. Preflight được trả lời ngay tại đây.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", HeaderRequestID},
		ExposedHeaders: []string{HeaderRequestID},
		MaxAge:         cfg.MaxAge,
		Logger:         corsLogger{},
	})

	return func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)

		if ctx.Request.Method == http.MethodOptions &&
			ctx.GetHeader("Access-Control-Request-Method") != "" {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}

		ctx.Next()
	}
}
