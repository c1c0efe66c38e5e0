package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/troikatech/voice-assistant/pkg/client"
)

const defaultGoogleVoice = "en-US-Neural2-F"

// GoogleTTSService handles Text-to-Speech using Google Cloud Text-to-Speech
type GoogleTTSService struct {
	apiKey       string
	languageCode string
	encoding     string
	httpClient   *client.HTTPClient
	logger       *zap.Logger
	baseURL      string
}

// NewGoogleTTSService creates a new Google TTS service
func NewGoogleTTSService(apiKey, languageCode, encoding string, timeout time.Duration, logger *zap.Logger) *GoogleTTSService {
	if apiKey == "" {
		return &GoogleTTSService{logger: logger}
	}

	if languageCode == "" {
		languageCode = "en-US"
	}
	if encoding == "" {
		encoding = "MP3"
	}

	return &GoogleTTSService{
		apiKey:       apiKey,
		languageCode: languageCode,
		encoding:     encoding,
		httpClient:   client.NewHTTPClient("google-tts", timeout),
		logger:       logger,
		baseURL:      "https://texttospeech.googleapis.com/v1",
	}
}

// IsAvailable checks if Google TTS is configured
func (s *GoogleTTSService) IsAvailable() bool {
	return s.apiKey != ""
}

// GoogleTTSRequest represents a synthesis request with a speaking rate
type GoogleTTSRequest struct {
	Text         string
	VoiceName    string
	SpeakingRate float64
	// LanguageCode overrides the service's language for this request
	LanguageCode string
}

// Synthesize returns raw audio bytes in the configured encoding
func (s *GoogleTTSService) Synthesize(ctx context.Context, req *GoogleTTSRequest) ([]byte, error) {
	if !s.IsAvailable() {
		return nil, fmt.Errorf("Google TTS not available. Set GOOGLE_TTS_API_KEY environment variable")
	}

	if req.Text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	voiceName := req.VoiceName
	if voiceName == "" {
		voiceName = defaultGoogleVoice
	}

	languageCode := req.LanguageCode
	if languageCode == "" {
		languageCode = s.languageCode
	}

	speakingRate := req.SpeakingRate
	if speakingRate == 0 {
		speakingRate = 1.0
	}

	body := map[string]interface{}{
		"input": map[string]string{
			"text": req.Text,
		},
		"voice": map[string]string{
			"languageCode": languageCode,
			"name":         voiceName,
		},
		"audioConfig": map[string]interface{}{
			"audioEncoding": s.encoding,
			"speakingRate":  speakingRate,
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode tts request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/text:synthesize", &buf)
	if err != nil {
		return nil, fmt.Errorf("build tts request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("tts http error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Google TTS API error: %d - %s", resp.StatusCode, string(b))
	}

	var respBody struct {
		AudioContent string `json:"audioContent"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("decode tts response: %w", err)
	}
	if respBody.AudioContent == "" {
		return nil, fmt.Errorf("empty audioContent in tts response")
	}

	audioBytes, err := base64.StdEncoding.DecodeString(respBody.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode base64 audioContent: %w", err)
	}

	return audioBytes, nil
}
