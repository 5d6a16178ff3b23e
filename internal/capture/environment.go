package capture

import (
	"os"
	"runtime"
	"strings"
)

// Environment captures the display-server facts backend eligibility is
// decided on. It is derived once per process and passed around explicitly so
// tests can fabricate hosts.
type Environment struct {
	WaylandDisplay string
	SessionType    string
	OS             string
}

// DetectEnvironment reads the session environment of the current process.
func DetectEnvironment() Environment {
	return Environment{
		WaylandDisplay: os.Getenv("WAYLAND_DISPLAY"),
		SessionType:    os.Getenv("XDG_SESSION_TYPE"),
		OS:             runtime.GOOS,
	}
}

// Wayland reports whether the session runs under a Wayland compositor.
func (e Environment) Wayland() bool {
	return e.WaylandDisplay != "" || strings.EqualFold(e.SessionType, "wayland")
}

// Linux reports whether the host is a Linux-family platform.
func (e Environment) Linux() bool {
	return e.OS == "linux"
}
