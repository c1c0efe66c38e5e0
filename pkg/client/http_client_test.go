package client

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/troikatech/voice-assistant/pkg/circuitbreaker"
)

func TestHTTPClient_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewHTTPClient("test-tts", time.Second)
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if c.ServiceName() != "test-tts" {
		t.Errorf("ServiceName() = %q", c.ServiceName())
	}
}

func TestHTTPClient_ServerErrorReturnsResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := NewHTTPClient("test-tts", time.Second)
	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do() error = %v, want 5xx response", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestHTTPClient_BreakerOpensAfterFailures(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewHTTPClientWithBreaker("test-llm", time.Second, circuitbreaker.Config{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          time.Minute,
	})

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
		resp, err := c.Do(req)
		if err != nil {
			t.Fatalf("call %d: Do() error = %v", i, err)
		}
		resp.Body.Close()
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	if _, err := c.Do(req); !errors.Is(err, circuitbreaker.ErrOpen) {
		t.Errorf("Do() error = %v, want ErrOpen", err)
	}
	if hits != 2 {
		t.Errorf("server hits = %d, want 2", hits)
	}
}
