package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
)

func TestParseResponse(t *testing.T) {
	status, results, err := parseResponse([]interface{}{
		uint32(0),
		map[string]dbus.Variant{"uri": dbus.MakeVariant("file:///tmp/shot.png")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != 0 {
		t.Errorf("status = %d, want 0", status)
	}
	if _, ok := results["uri"]; !ok {
		t.Error("results should carry the uri entry")
	}
}

func TestParseResponseMalformed(t *testing.T) {
	cases := []struct {
		name string
		body []interface{}
	}{
		{"short body", []interface{}{uint32(0)}},
		{"wrong status type", []interface{}{"0", map[string]dbus.Variant{}}},
		{"wrong results type", []interface{}{uint32(0), "results"}},
	}
	for _, c := range cases {
		_, _, err := parseResponse(c.body)
		if !errors.Is(err, ErrPortalProtocol) {
			t.Errorf("%s: expected ErrPortalProtocol, got %v", c.name, err)
		}
	}
}

func TestResultURI(t *testing.T) {
	uri, err := resultURI(map[string]dbus.Variant{"uri": dbus.MakeVariant("file:///tmp/shot.png")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uri != "file:///tmp/shot.png" {
		t.Errorf("uri = %q", uri)
	}

	if _, err := resultURI(map[string]dbus.Variant{}); !errors.Is(err, ErrPortalProtocol) {
		t.Errorf("missing uri should be a protocol error, got %v", err)
	}
	if _, err := resultURI(map[string]dbus.Variant{"uri": dbus.MakeVariant(7)}); !errors.Is(err, ErrPortalProtocol) {
		t.Errorf("non-string uri should be a protocol error, got %v", err)
	}
}

func TestURIToPath(t *testing.T) {
	path, err := uriToPath("file:///run/user/1000/doc/shot%20one.png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "/run/user/1000/doc/shot one.png" {
		t.Errorf("path = %q", path)
	}

	if _, err := uriToPath("http://example.com/shot.png"); !errors.Is(err, ErrPortalProtocol) {
		t.Errorf("non-file scheme should be rejected, got %v", err)
	}
}

func TestWaitResponseTimeout(t *testing.T) {
	p := &PortalBackend{timeout: 20 * time.Millisecond}
	sigc := make(chan *dbus.Signal)

	_, _, err := p.waitResponse(context.Background(), sigc, "/req/1")
	if !errors.Is(err, ErrPortalTimeout) {
		t.Fatalf("expected ErrPortalTimeout, got %v", err)
	}
}

func TestWaitResponseContextCancel(t *testing.T) {
	p := &PortalBackend{timeout: time.Minute}
	sigc := make(chan *dbus.Signal)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := p.waitResponse(ctx, sigc, "/req/1")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitResponseIgnoresUnrelatedSignals(t *testing.T) {
	p := &PortalBackend{timeout: time.Second}
	sigc := make(chan *dbus.Signal, 3)

	handle := dbus.ObjectPath("/org/freedesktop/portal/desktop/request/x/token")
	sigc <- &dbus.Signal{Path: "/other/request", Name: requestIface + ".Response"}
	sigc <- &dbus.Signal{Path: handle, Name: "org.freedesktop.DBus.NameAcquired"}
	sigc <- &dbus.Signal{
		Path: handle,
		Name: requestIface + ".Response",
		Body: []interface{}{
			uint32(0),
			map[string]dbus.Variant{"uri": dbus.MakeVariant("file:///tmp/shot.png")},
		},
	}

	status, results, err := p.waitResponse(context.Background(), sigc, handle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != 0 {
		t.Errorf("status = %d, want 0", status)
	}
	if len(results) != 1 {
		t.Errorf("results = %v, want the single uri entry", results)
	}
}

func TestNewPortalBackendTimeoutDefault(t *testing.T) {
	if p := NewPortalBackend(0); p.timeout != defaultPortalTimeout {
		t.Errorf("timeout = %s, want %s", p.timeout, defaultPortalTimeout)
	}
	if p := NewPortalBackend(5 * time.Second); p.timeout != 5*time.Second {
		t.Errorf("timeout = %s, want 5s", p.timeout)
	}
}
