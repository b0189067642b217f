package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davicafu/toplaces/internal/bootstrap"
	infraEvents "github.com/davicafu/toplaces/internal/infra/events"
	"github.com/davicafu/toplaces/internal/place/application"
	placeDomain "github.com/davicafu/toplaces/internal/place/domain"
	sharedEvents "github.com/davicafu/toplaces/internal/shared/events"
	sharedBus "github.com/davicafu/toplaces/internal/shared/infra/platform/bus"
	sharedUtils "github.com/davicafu/toplaces/internal/shared/infra/utils"
)

var invalidateReason string

// cacheCmd agrupa la gestión del ranking cacheado.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the cached top places ranking",
	Long: `Manage the ranking entry persisted in the local store.

Subcommands:
  inspect    - Show whether the entry is absent, fresh or stale
  clear      - Delete the entry from the configured store
  invalidate - Publish a ranking.invalidated event so running services drop it`,
}

// cacheInspectCmd muestra el estado de la entrada sin consultar la fuente remota.
var cacheInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the state of the cached ranking",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmdContext(cmd)

		store, closeStore, err := bootstrap.OpenStore(ctx, cfg, log, bootstrap.StrictStore())
		if err != nil {
			return err
		}
		defer closeStore()

		// Inspect nunca toca la fuente remota.
		cache := application.NewRankedListCache[placeDomain.Place](nil, store, bootstrap.RankingQuery(cfg), log)
		return writeEntryInfo(cmd.OutOrStdout(), cfg.StoreBackend, cache.Inspect(ctx), time.Now())
	},
}

// cacheClearCmd borra la entrada del almacén configurado.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the cached ranking from the local store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmdContext(cmd)

		store, closeStore, err := bootstrap.OpenStore(ctx, cfg, log, bootstrap.StrictStore())
		if err != nil {
			return err
		}
		defer closeStore()

		cache := application.NewRankedListCache[placeDomain.Place](nil, store, bootstrap.RankingQuery(cfg), log)
		cache.ClearCache(ctx)

		_, err = fmt.Fprintln(cmd.OutOrStdout(), "Ranking cache cleared.")
		return err
	},
}

// cacheInvalidateCmd publica un evento de invalidación en Kafka.
var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Publish a ranking.invalidated event to Kafka",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmdContext(cmd), 10*time.Second)
		defer cancel()

		writer := infraEvents.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer writer.Close()

		evt, err := publishInvalidation(ctx, infraEvents.NewKafkaPublisher(writer, log), invalidateReason)
		if err != nil {
			return err
		}

		log.Info("Invalidation published", zap.String("event_id", evt.ID.String()))
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Published %s (%s) to %s.\n", evt.Type, evt.ID, cfg.KafkaTopic)
		return err
	},
}

func init() {
	cacheInvalidateCmd.Flags().StringVar(&invalidateReason, "reason", "manual", "reason attached to the event")

	cacheCmd.AddCommand(cacheInspectCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheInvalidateCmd)
}

// publishInvalidation construye y publica el evento ranking.invalidated.
func publishInvalidation(ctx context.Context, bus sharedBus.EventBus, reason string) (sharedEvents.IntegrationEvent, error) {
	evt, err := sharedEvents.NewIntegrationEvent(placeDomain.RankingInvalidated, sharedEvents.RankingInvalidated{
		Reason: reason,
		Source: "toplacesctl",
	})
	if err != nil {
		return sharedEvents.IntegrationEvent{}, err
	}
	if err := bus.Publish(ctx, evt); err != nil {
		return sharedEvents.IntegrationEvent{}, fmt.Errorf("failed to publish invalidation: %w", err)
	}
	return evt, nil
}

// writeEntryInfo imprime el estado de la entrada.
func writeEntryInfo(w io.Writer, backend string, info application.EntryInfo, now time.Time) error {
	if info.State == application.EntryAbsent {
		_, err := fmt.Fprintf(w, "Backend: %s\nState:   %s\n", backend, stateLabel(info.State))
		return err
	}

	remaining := info.ExpiresAt.Sub(now).Round(time.Second)
	expiry := sharedUtils.Ternary(remaining > 0,
		fmt.Sprintf("%s (in %s)", info.ExpiresAt.Format(time.RFC3339), remaining),
		fmt.Sprintf("%s (%s ago)", info.ExpiresAt.Format(time.RFC3339), -remaining))

	_, err := fmt.Fprintf(w, "Backend: %s\nState:   %s\nItems:   %d\nExpires: %s\n",
		backend, stateLabel(info.State), info.Items, expiry)
	return err
}

// stateLabel colorea el estado; sin TTY el texto sale plano.
func stateLabel(state application.EntryState) string {
	switch state {
	case application.EntryFresh:
		return color.GreenString(string(state))
	case application.EntryStale:
		return color.YellowString(string(state))
	default:
		return color.RedString(string(state))
	}
}
