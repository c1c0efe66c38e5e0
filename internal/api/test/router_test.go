package test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/troikatech/voice-assistant/internal/api"
	"github.com/troikatech/voice-assistant/internal/api/handlers"
	"github.com/troikatech/voice-assistant/pkg/ai"
	"github.com/troikatech/voice-assistant/pkg/auth"
	"github.com/troikatech/voice-assistant/pkg/env"
	"github.com/troikatech/voice-assistant/pkg/storage"
	"github.com/troikatech/voice-assistant/pkg/transcript"
	"github.com/troikatech/voice-assistant/pkg/voice"
)

const testSecret = "test-secret"

// buildTestRouter wires the real router with unconfigured providers, so every
// turn is answered from the fallback table without audio
func buildTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &env.Config{
		JWTSecret:          testSecret,
		CORSAllowedOrigins: "*",
		APIRateLimitRPM:    60,
	}

	logger := zap.NewNop()
	timeout := 5 * time.Second
	aiManager := ai.NewManager([]ai.Provider{ai.NewOpenAIProvider("", "", timeout, logger)}, logger)
	elevenLabs := ai.NewTTSService("", "", "", timeout, logger)
	googleTTS := ai.NewGoogleTTSService("", "", "", timeout, logger)

	vcfg := voice.DefaultConfig()
	pipeline := voice.NewPipeline(
		voice.NewReplyGenerator(aiManager, vcfg, logger),
		voice.NewSynthesizer(googleTTS, elevenLabs, vcfg, logger),
		logger,
	)

	h := handlers.NewHandler(cfg, nil, nil, aiManager, googleTTS, elevenLabs, pipeline,
		storage.NewLocalDriver(t.TempDir(), "mp3"), transcript.NewMemoryStore())

	return api.NewRouter(cfg, h, nil, logger)
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, _, err := auth.GenerateAccessToken("u1", "ops@example.com", role, testSecret, "voice-assistant", "voice-api", 5)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	return "Bearer " + tok
}

func TestRouter_Routes(t *testing.T) {
	router := buildTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		auth   string
		want   int
	}{
		{"health", http.MethodGet, "/health", "", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", "", http.StatusOK},
		{"prometheus", http.MethodGet, "/metrics/prometheus", "", "", http.StatusOK},
		{"turn", http.MethodPost, "/voice/turn", `{"call_sid":"CA1","utterance":"hello"}`, "", http.StatusOK},
		{"turn without call", http.MethodPost, "/voice/turn", `{"utterance":"hello"}`, "", http.StatusBadRequest},
		{"audio bad id", http.MethodGet, "/voice/audio/123", "", "", http.StatusBadRequest},
		{"audio missing", http.MethodGet, "/voice/audio/6f1c1f7e-8a3e-4c55-9a43-0e1c2b9d7a11", "", "", http.StatusNotFound},
		{"turns no token", http.MethodGet, "/api/calls/CA1/turns", "", "", http.StatusUnauthorized},
		{"turns operator", http.MethodGet, "/api/calls/CA1/turns", "", token(t, auth.RoleOperator), http.StatusOK},
		{"voices operator", http.MethodGet, "/api/voice/voices", "", token(t, auth.RoleOperator), http.StatusForbidden},
		{"voices unconfigured", http.MethodGet, "/api/voice/voices", "", token(t, auth.RoleAdmin), http.StatusServiceUnavailable},
		{"unknown route", http.MethodGet, "/api/users", "", token(t, auth.RoleAdmin), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("%s %s = %d, want %d (%s)", tt.method, tt.path, w.Code, tt.want, w.Body.String())
			}
			if w.Header().Get("X-Trace-ID") == "" {
				t.Error("X-Trace-ID header missing")
			}
		})
	}
}

func TestRouter_DegradedTurnWithoutProviders(t *testing.T) {
	router := buildTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/voice/turn",
		strings.NewReader(`{"call_sid":"CA2","utterance":"my order is broken"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`"client_tts":true`, `"provider_used":"none"`, `"context_tag":"empathetic"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body %s missing %s", body, want)
		}
	}
}
