package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/davicafu/toplaces/pkg/utils"
)

// RegisterPlaceRoutes registra las rutas HTTP del ranking de lugares.
func RegisterPlaceRoutes(r *gin.Engine, handler *PlaceHandler) {
	r.GET("/health", handler.Health)

	places := r.Group("/places")
	{
		places.GET("/top", handler.GetTopPlaces)            // Ranking top-N
		places.DELETE("/top/cache", handler.ClearTopPlaces) // Descartar el ranking cacheado
	}
}

// NewRouter crea el engine de gin con logging estructurado, recuperación de
// panics y respuestas de error homogéneas.
func NewRouter(handler *PlaceHandler, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(log))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error("Panic recovered in HTTP handler", zap.Any("panic", recovered))
		utils.SendInternalServerError(c, "internal server error")
	}))
	r.NoRoute(func(c *gin.Context) {
		utils.SendNotFound(c, "route not found")
	})

	RegisterPlaceRoutes(r, handler)
	return r
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
