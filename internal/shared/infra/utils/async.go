package utils

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunAsync ejecuta fn en una goroutine con su propio contexto acotado, para que
// no dependa del ciclo de vida de la petición que la lanza. Los errores solo
// se registran. El canal devuelto se cierra al terminar.
func RunAsync(log *zap.Logger, name string, timeout time.Duration, fn func(ctx context.Context) error) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			log.Warn("Background task failed", zap.String("task", name), zap.Error(err))
			return
		}
		log.Debug("Background task done", zap.String("task", name))
	}()
	return done
}
