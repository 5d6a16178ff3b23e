package commands

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/bryanchriswhite/RegionShot/internal/capture"
	"github.com/bryanchriswhite/RegionShot/internal/config"
	"github.com/bryanchriswhite/RegionShot/internal/logger"
	"github.com/bryanchriswhite/RegionShot/internal/overlay"
)

// loadConfig reads the config file and applies CLI flag overrides.
func loadConfig() (*config.Manager, config.Config, error) {
	configMgr, err := config.NewManager(GetConfigFile())
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("failed to initialize config manager: %w", err)
	}

	if viper.IsSet("log_level") {
		if level := viper.GetString("log_level"); level != "" {
			configMgr.SetLogLevel(level)
		}
	}
	if viper.IsSet("server_port") {
		if port := viper.GetInt("server_port"); port > 0 {
			configMgr.SetPort(port)
		}
	}

	cfg := configMgr.Get()
	logger.Init(cfg.LogLevel, cfg.LogPretty)
	logger.WithComponent("config").Debug().
		Str("path", configMgr.GetConfigPath()).
		Msg("Configuration loaded")
	return configMgr, cfg, nil
}

// captureBackends holds the wired backend chain and its closable resources.
type captureBackends struct {
	Coordinator *capture.Coordinator
	portal      *capture.PortalBackend
	region      *capture.X11RegionGrab
}

// buildBackends wires the coordinator for the detected host environment.
func buildBackends(cfg config.Config) *captureBackends {
	env := capture.DetectEnvironment()
	logger.WithComponent("capture").Debug().
		Bool("wayland", env.Wayland()).
		Str("os", env.OS).
		Msg("Detected display environment")

	portal := capture.NewPortalBackend(time.Duration(cfg.PortalTimeoutSec) * time.Second)
	region := capture.NewX11RegionGrab()
	coord := capture.NewCoordinator(env, overlay.NewSelector(), portal, capture.NewDirectGrab(), region)

	return &captureBackends{Coordinator: coord, portal: portal, region: region}
}

// Close releases backend connections.
func (b *captureBackends) Close() {
	b.portal.Close()
	b.region.Close()
}
