package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	placeDomain "github.com/davicafu/toplaces/internal/place/domain"
	sharedEvents "github.com/davicafu/toplaces/internal/shared/events"
	sharedUtils "github.com/davicafu/toplaces/internal/shared/infra/utils"
)

// RankingCache es lo único que el consumidor necesita del caché de rankings.
type RankingCache interface {
	ClearCache(ctx context.Context)
}

// PlaceConsumer descarta el ranking cacheado cuando llega un evento que lo invalida.
type PlaceConsumer struct {
	cache RankingCache
	log   *zap.Logger
}

func NewPlaceConsumer(cache RankingCache, logger *zap.Logger) *PlaceConsumer {
	return &PlaceConsumer{
		cache: cache,
		log:   logger,
	}
}

func (c *PlaceConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event", zap.String("key", key), zap.Error(err))
		return
	}

	if !placeDomain.InvalidatesRanking(base.Type) {
		c.log.Warn("Unknown event type", zap.String("type", base.Type))
		return
	}

	switch base.Type {
	case placeDomain.PlaceUpdated, placeDomain.PlaceDeleted:
		sharedUtils.UnmarshalAndHandle[sharedEvents.PlaceChanged](c.log, base.Data, func(evt sharedEvents.PlaceChanged) {
			c.invalidate(ctx, base, zap.String("place_id", evt.PlaceID))
		})

	case placeDomain.RankingInvalidated:
		if len(base.Data) == 0 {
			c.invalidate(ctx, base)
			return
		}
		sharedUtils.UnmarshalAndHandle[sharedEvents.RankingInvalidated](c.log, base.Data, func(evt sharedEvents.RankingInvalidated) {
			c.invalidate(ctx, base, zap.String("reason", evt.Reason), zap.String("source", evt.Source))
		})
	}
}

// invalidate limpia el caché con un contexto acotado.
func (c *PlaceConsumer) invalidate(ctx context.Context, base sharedEvents.IntegrationEvent, fields ...zap.Field) {
	ctxClear, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	c.cache.ClearCache(ctxClear)

	c.log.Info("Ranking invalidated via event", append([]zap.Field{
		zap.String("type", base.Type),
		zap.String("event_id", base.ID.String()),
	}, fields...)...)
}

// BackgroundConsumerChan procesa los eventos que llegan por el bus en memoria.
func BackgroundConsumerChan(ctx context.Context, ch <-chan interface{}, consumer *PlaceConsumer) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				consumer.log.Info("PlaceConsumer stopped")
				return
			case msg, ok := <-ch:
				if !ok {
					consumer.log.Info("PlaceConsumer channel closed")
					return
				}
				// El bus envía []byte.
				if payload, ok := msg.([]byte); ok {
					consumer.HandleMessage(ctx, "", payload)
				}
			}
		}
	}()
}
