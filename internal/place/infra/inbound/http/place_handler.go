package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	placeDomain "github.com/davicafu/toplaces/internal/place/domain"
	sharedEvents "github.com/davicafu/toplaces/internal/shared/events"
	sharedBus "github.com/davicafu/toplaces/internal/shared/infra/platform/bus"
	"github.com/davicafu/toplaces/pkg/utils"
)

const invalidationSource = "toplaces-http"

// TopPlacesCache es el puerto que usa el handler; lo implementa
// application.RankedListCache[domain.Place].
type TopPlacesCache interface {
	GetTopItems(ctx context.Context, limit int, ttl time.Duration) []placeDomain.Place
	ClearCache(ctx context.Context)
}

// PlaceHandler encapsula los endpoints HTTP del ranking de lugares.
type PlaceHandler struct {
	cache        TopPlacesCache
	bus          sharedBus.EventBus
	defaultLimit int
	ttl          time.Duration
	log          *zap.Logger
}

// NewPlaceHandler crea un nuevo PlaceHandler. Si bus no es nil, cada borrado
// del caché se anuncia con un evento ranking.invalidated para el resto de
// instancias.
func NewPlaceHandler(cache TopPlacesCache, bus sharedBus.EventBus, defaultLimit int, ttl time.Duration, log *zap.Logger) *PlaceHandler {
	if defaultLimit <= 0 {
		defaultLimit = placeDomain.DefaultTopLimit
	}
	return &PlaceHandler{cache: cache, bus: bus, defaultLimit: defaultLimit, ttl: ttl, log: log}
}

// GetTopPlaces endpoint GET /places/top?limit=N&category=C
func (h *PlaceHandler) GetTopPlaces(c *gin.Context) {
	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.SendBadRequest(c, placeDomain.ErrInvalidLimit.Error())
			return
		}
		limit = n
	}

	category := placeDomain.Category(c.Query("category"))
	if category != "" && !category.IsKnownCategory() {
		utils.SendBadRequest(c, "unknown category: "+string(category))
		return
	}

	places := h.cache.GetTopItems(c.Request.Context(), limit, h.ttl)
	if category != "" {
		places = filterByCategory(places, category)
	}

	utils.SendSuccess(c, http.StatusOK, places)
}

// ClearTopPlaces endpoint DELETE /places/top/cache
// El borrado local es síncrono; el evento es best-effort.
func (h *PlaceHandler) ClearTopPlaces(c *gin.Context) {
	ctx := c.Request.Context()
	h.cache.ClearCache(ctx)

	if h.bus != nil {
		if err := h.publishInvalidation(ctx); err != nil {
			h.log.Warn("Failed to publish ranking invalidation", zap.Error(err))
		}
	}
	c.Status(http.StatusNoContent)
}

func (h *PlaceHandler) publishInvalidation(ctx context.Context) error {
	evt, err := sharedEvents.NewIntegrationEvent(placeDomain.RankingInvalidated, sharedEvents.RankingInvalidated{
		Reason: "cache cleared via HTTP",
		Source: invalidationSource,
	})
	if err != nil {
		return err
	}
	return h.bus.Publish(ctx, evt)
}

// Health endpoint GET /health
func (h *PlaceHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// filterByCategory conserva el orden del ranking.
func filterByCategory(places []placeDomain.Place, category placeDomain.Category) []placeDomain.Place {
	out := make([]placeDomain.Place, 0, len(places))
	for _, p := range places {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
