package events

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler lo implementa quien procesa los eventos (PlaceConsumer).
// No devuelve error: un mensaje que no se puede procesar se registra y se
// descarta, no bloquea la partición.
type MessageHandler interface {
	HandleMessage(ctx context.Context, key string, payload []byte)
}

// messageReader es el subconjunto de *kafka.Reader que usa el adapter.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
}

// Espera entre errores de lectura consecutivos.
const (
	minReadBackoff = 100 * time.Millisecond
	maxReadBackoff = 5 * time.Second
)

// ConsumerAdapter lee de Kafka con entrega at-least-once: el offset se
// confirma solo después de pasar el mensaje al handler.
type ConsumerAdapter struct {
	reader  messageReader
	handler MessageHandler
	log     *zap.Logger
	sleep   func(ctx context.Context, d time.Duration)
}

func NewConsumerAdapter(reader *kafka.Reader, handler MessageHandler, log *zap.Logger) *ConsumerAdapter {
	return &ConsumerAdapter{
		reader:  reader,
		handler: handler,
		log:     log,
		sleep:   sleepCtx,
	}
}

// Start lanza el bucle de consumo en una goroutine. El canal devuelto se
// cierra cuando el bucle termina (al cancelar ctx).
func (c *ConsumerAdapter) Start(ctx context.Context) <-chan struct{} {
	cfg := c.reader.Config()
	// Sin GroupID el reader no admite commits; el offset vive solo en memoria.
	commit := cfg.GroupID != ""

	c.log.Info("Starting Kafka consumer",
		zap.String("topic", cfg.Topic),
		zap.String("group_id", cfg.GroupID),
		zap.Strings("brokers", cfg.Brokers),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)

		backoff := minReadBackoff
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					c.log.Info("Kafka consumer stopped", zap.String("topic", cfg.Topic))
					return
				}
				c.log.Error("Failed to fetch Kafka message",
					zap.Duration("retry_in", backoff), zap.Error(err))
				c.sleep(ctx, backoff)
				backoff = min(backoff*2, maxReadBackoff)
				continue
			}
			backoff = minReadBackoff

			c.handler.HandleMessage(ctx, string(msg.Key), msg.Value)

			if !commit {
				continue
			}
			if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
				// El mensaje se volverá a entregar; invalidar dos veces es inocuo.
				c.log.Warn("Failed to commit Kafka offset",
					zap.Int("partition", msg.Partition),
					zap.Int64("offset", msg.Offset),
					zap.Error(err))
			}
		}
	}()
	return done
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
