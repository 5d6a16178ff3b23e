package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.design/x/clipboard"

	"github.com/bryanchriswhite/RegionShot/internal/api"
	"github.com/bryanchriswhite/RegionShot/internal/hotkey"
	"github.com/bryanchriswhite/RegionShot/internal/logger"
	"github.com/bryanchriswhite/RegionShot/internal/runner"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run resident: global hotkey and HTTP capture trigger",
	Long: `Run RegionShot as a resident process. The configured global hotkey and the
local HTTP API both trigger captures; hotkey captures are written into the
output directory (and optionally the clipboard), API captures are streamed
back to the caller.`,
	Example: `  # Run with the configured hotkey and API port
  regionshot run

  # Run with a custom port and debug logging
  regionshot run --port 9090 --log-level debug`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.WithComponent("run")

	backends := buildBackends(cfg)
	defer backends.Close()

	opts := runner.Options{
		OutputDir:    cfg.OutputDir,
		OutputFormat: cfg.OutputFormat,
		Clipboard:    cfg.CopyToClipboard,
	}
	if opts.Clipboard {
		if err := clipboard.Init(); err != nil {
			log.Warn().Err(err).Msg("Clipboard unavailable, disabling copy-to-clipboard")
			opts.Clipboard = false
		}
	}

	loop := runner.New(backends.Coordinator, opts)

	server := api.NewServer(loop.Submit, backends.Coordinator.Status)
	go func() {
		if err := server.Start(cfg.ServerPort); err != nil {
			log.Error().Err(err).Msg("API server stopped")
		}
	}()

	stopHotkey, err := hotkey.Listen(cfg.Hotkey, loop.Trigger)
	if err != nil {
		log.Warn().Err(err).Msg("Hotkey registration failed, API trigger only")
	} else {
		defer stopHotkey()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("RegionShot is running (hotkey: %s, API: http://127.0.0.1:%d/api)\n", cfg.Hotkey, cfg.ServerPort)
	fmt.Println("Press Ctrl+C to stop")

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("Shutting down")
	return nil
}
