// Package hotkey registers a global keyboard shortcut that triggers capture
// requests. It is a thin wrapper over gohook; the capture flow itself lives
// in the run loop.
package hotkey

import (
	"fmt"
	"strings"

	hook "github.com/robotn/gohook"

	"github.com/bryanchriswhite/RegionShot/internal/logger"
)

// Listen registers combo (e.g. "ctrl+shift+s") and invokes callback on every
// press. It returns a stop function that unhooks the listener. The callback
// runs on the hook goroutine and must not block.
func Listen(combo string, callback func()) (func(), error) {
	keys := parseCombo(combo)
	if len(keys) == 0 {
		return nil, fmt.Errorf("empty hotkey combo %q", combo)
	}

	log := logger.WithComponent("hotkey")

	hook.Register(hook.KeyDown, keys, func(e hook.Event) {
		log.Debug().Str("combo", combo).Msg("Hotkey pressed")
		callback()
	})

	events := hook.Start()
	go func() {
		<-hook.Process(events)
		log.Debug().Msg("Hotkey listener stopped")
	}()

	log.Info().Str("combo", combo).Msg("Global hotkey registered")
	return hook.End, nil
}

// parseCombo splits "ctrl+shift+s" into the lowercase key names gohook
// expects.
func parseCombo(combo string) []string {
	var keys []string
	for _, part := range strings.Split(combo, "+") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			keys = append(keys, part)
		}
	}
	return keys
}
