package eventhub

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDebugServerExtensionsEndpoint(t *testing.T) {
	hub := NewEventHub()
	defer hub.Shutdown()

	registerSync(t, hub, "A", func(api ExtensionApi) (Extension, error) {
		return &fakeExtension{name: "A"}, nil
	})
	hub.Start()

	ds := NewDebugServer(hub, "127.0.0.1:0")
	srv := httptest.NewServer(ds.server.Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/extensions")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var got []extensionView
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "A" {
		t.Fatalf("expected [A], got %v", got)
	}
}

func TestDebugServerHealthEndpoint(t *testing.T) {
	hub := NewEventHub()
	defer hub.Shutdown()
	hub.Start()

	ds := NewDebugServer(hub, "127.0.0.1:0")
	srv := httptest.NewServer(ds.server.Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with no registered extensions, got %d", resp.StatusCode)
	}
}

func TestDebugServerStartAndShutdown(t *testing.T) {
	hub := NewEventHub()
	defer hub.Shutdown()
	hub.Start()

	ds := NewDebugServer(hub, "127.0.0.1:0")
	errCh := ds.Start()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ds.Shutdown(ctx); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}
	select {
	case err := <-errCh:
		t.Fatalf("unexpected listen error: %v", err)
	default:
	}
}
