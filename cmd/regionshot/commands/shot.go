package commands

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanchriswhite/RegionShot/internal/capture"
	"github.com/bryanchriswhite/RegionShot/internal/encode"
	"github.com/bryanchriswhite/RegionShot/internal/logger"
)

var (
	shotOutFlag    string
	shotFormatFlag string
	shotFullFlag   bool
)

var shotCmd = &cobra.Command{
	Use:   "shot",
	Short: "Capture a screen region once and write it to a file",
	Long: `Capture a screen region interactively (or the full desktop with --full)
and write the image to a file.`,
	Example: `  # Select a region and save it into the configured output directory
  regionshot shot

  # Capture the full desktop as BMP to an explicit path
  regionshot shot --full --format bmp -o /tmp/desktop.bmp

  # Write the image to stdout for piping
  regionshot shot -o -`,
	RunE: runShot,
}

func init() {
	rootCmd.AddCommand(shotCmd)

	shotCmd.Flags().StringVarP(&shotOutFlag, "out", "o", "", "output path ('-' for stdout, default: timestamped file in output_dir)")
	shotCmd.Flags().StringVarP(&shotFormatFlag, "format", "f", "", "output format (png, bmp, or tiff; default from config)")
	shotCmd.Flags().BoolVar(&shotFullFlag, "full", false, "capture the full desktop without interactive selection")
}

func runShot(cmd *cobra.Command, args []string) error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format := cfg.OutputFormat
	if shotFormatFlag != "" {
		format = shotFormatFlag
	}

	backends := buildBackends(cfg)
	defer backends.Close()

	var img *image.RGBA
	if shotFullFlag {
		img, err = capture.NewDirectGrab().GrabAll()
	} else {
		img, err = backends.Coordinator.Screenshot(cmd.Context())
	}
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}
	if img == nil {
		logger.WithComponent("shot").Info().Msg("Capture cancelled")
		return nil
	}

	return writeShot(img, cfg.OutputDir, format)
}

func writeShot(img *image.RGBA, outputDir, format string) error {
	if shotOutFlag == "-" {
		return encode.Encode(os.Stdout, img, format)
	}

	path := shotOutFlag
	if path == "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		name := "shot-" + time.Now().Format("20060102-150405") + encode.Extension(format)
		path = filepath.Join(outputDir, name)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if err := encode.Encode(f, img, format); err != nil {
		return fmt.Errorf("encode image: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	fmt.Println(path)
	return nil
}
