package api_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"
)

func TestHealthEndpoint(t *testing.T) {
	srv, cleanup := setupServer(t, nil)
	defer cleanup()

	res, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status: %q", body["status"])
	}
	if _, err := time.Parse(time.RFC3339, body["timestamp"]); err != nil {
		t.Fatalf("timestamp not RFC3339: %q", body["timestamp"])
	}
}

func TestVersionEndpoint(t *testing.T) {
	srv, cleanup := setupServer(t, nil)
	defer cleanup()

	res, err := http.Get(srv.URL + "/version")
	if err != nil {
		t.Fatalf("get version: %v", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["version"] != "test" {
		t.Fatalf("version: %q", body["version"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, cleanup := setupServer(t, nil)
	defer cleanup()

	// generate at least one sample
	res, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	res.Body.Close()

	res, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
}
