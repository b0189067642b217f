package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davicafu/toplaces/internal/config"
	"github.com/davicafu/toplaces/pkg/logger"
)

// cfg guarda la configuración validada (defaults, fichero y entorno).
var cfg = &config.Config{}

// log es el logger estructurado compartido por los subcomandos.
var log = zap.NewNop()

// logLevel permite silenciar o detallar los logs desde la línea de comandos.
var logLevel string

// rootCmd es el punto de entrada de todos los subcomandos.
var rootCmd = &cobra.Command{
	Use:           "toplacesctl",
	Short:         "Inspect and manage the cached top places ranking.",
	Long:          `toplacesctl reads the ranked top places through the same local cache the service uses, and lets operators inspect, clear or invalidate it.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded

		level := cfg.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		logger.Init(level)
		log = logger.Logger()
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		logger.Sync()
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(cacheCmd)
}

// cmdContext devuelve el contexto del comando o uno de fondo si no hay.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
