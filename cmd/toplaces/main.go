package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/davicafu/toplaces/internal/bootstrap"
	"github.com/davicafu/toplaces/internal/config"
	infraEvents "github.com/davicafu/toplaces/internal/infra/events"
	placeDomain "github.com/davicafu/toplaces/internal/place/domain"
	placeEvents "github.com/davicafu/toplaces/internal/place/infra/inbound/events"
	placeHttp "github.com/davicafu/toplaces/internal/place/infra/inbound/http"
	sharedBus "github.com/davicafu/toplaces/internal/shared/infra/platform/bus"
	"github.com/davicafu/toplaces/pkg/logger"
)

// ---------------- Main ----------------
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.LogLevel) // inicializa zap
	log := logger.Logger()    // obtiene logger estructurado
	defer logger.Sync()       // flush buffers al salir

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---------------- Store ----------------
	store, closeStore, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open local store", zap.Error(err))
	}
	defer closeStore()

	// ---------------- Source ---------------
	source, closeSource, err := bootstrap.OpenPlaceSource(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open place source", zap.Error(err))
	}
	defer closeSource()

	// -------------- Analytics --------------
	analytics, closeAnalytics, err := bootstrap.OpenAnalytics(cfg, log)
	if err != nil {
		log.Warn("ClickHouse unavailable, ranking snapshots disabled", zap.Error(err))
		analytics, closeAnalytics = nil, func() {}
	}
	defer closeAnalytics()

	// ---------------- Cache ----------------
	topPlaces := bootstrap.NewTopPlacesCache(cfg, source, store, analytics, log)

	// ---------------- Events ---------------
	consumer := placeEvents.NewPlaceConsumer(topPlaces, log)

	// publisher anuncia las invalidaciones hechas por HTTP en el bus configurado.
	var publisher sharedBus.EventBus

	if cfg.UseKafka {
		log.Info("Using Kafka as event bus", zap.Strings("brokers", cfg.KafkaBrokers))

		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.KafkaBrokers,
			Topic:    cfg.KafkaTopic,
			GroupID:  "toplaces-ranking-cache",
			MinBytes: 1,
			MaxBytes: 10e6, // 10MB
		})
		defer reader.Close()

		infraEvents.NewConsumerAdapter(reader, consumer, log).Start(ctx)

		writer := infraEvents.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer writer.Close()
		publisher = infraEvents.NewKafkaPublisher(writer, log)
	} else {
		log.Info("Using in-memory event bus")

		bus := infraEvents.NewInMemoryEventBus(placeDomain.PlaceTopic, log)
		defer bus.Close()

		placeEvents.BackgroundConsumerChan(ctx, bus.Subscribe(10), consumer)
		publisher = bus
	}

	// ----------------- HTTP ----------------
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := placeHttp.NewPlaceHandler(topPlaces, publisher, cfg.TopLimit, cfg.CacheTTL, log)
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           placeHttp.NewRouter(handler, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown failed", zap.Error(err))
	}
}
