package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/0bVdnt/PixlFX/internal/config"
	"github.com/0bVdnt/PixlFX/internal/logger"
	"github.com/0bVdnt/PixlFX/internal/ui"
)

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a pixlfx.yaml config file")

	rootCmd.PersistentFlags().String("log", "", "Write logs to this file")
	lo.Must0(viper.BindPFlag(config.LogsPath, rootCmd.PersistentFlags().Lookup("log")))
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	lo.Must0(viper.BindPFlag(config.LogsLevel, rootCmd.PersistentFlags().Lookup("log-level")))

	rootCmd.Flags().Int("frame-interval", 0, "Capture a frame for the backdrop every N milliseconds, 0 disables")
	lo.Must0(viper.BindPFlag(config.PlayerVideoFrameMillis, rootCmd.Flags().Lookup("frame-interval")))
	rootCmd.Flags().Bool("no-autoplay", false, "Load sources paused")
	rootCmd.Flags().Bool("no-loop", false, "Stop at the end of a source instead of looping it")
	rootCmd.Flags().Bool("no-ambient", false, "Disable the ambient backdrop")

	rootCmd.AddCommand(configCmd)
}

var rootCmd = &cobra.Command{
	Use:   "pixlfx [sources...]",
	Short: "Play videos in the terminal over an ambient backdrop",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.Setup(configFile)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			viper.Set(config.PlayerSources, args)
		}
		for flag, key := range map[string]string{
			"no-autoplay": config.PlayerAutoPlay,
			"no-loop":     config.PlayerLooping,
			"no-ambient":  config.AmbientEnabled,
		} {
			if lo.Must(cmd.Flags().GetBool(flag)) {
				viper.Set(key, false)
			}
		}

		settings := config.Current()
		log, err := logger.New(settings.LogPath, settings.LogLevel)
		if err != nil {
			return err
		}
		defer log.Close()

		app, err := ui.New(settings, log)
		if err != nil {
			return err
		}
		config.Watch(app.ApplySettings)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return app.Run(ctx)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		return config.Write(cmd.OutOrStdout())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
