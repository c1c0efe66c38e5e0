package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/troikatech/voice-assistant/pkg/client"
)

const defaultElevenLabsVoiceID = "21m00Tcm4TlvDq8ikWAM"

// TTSService handles Text-to-Speech using ElevenLabs
type TTSService struct {
	apiKey              string
	defaultModelID      string
	defaultOutputFormat string
	httpClient          *client.HTTPClient
	logger              *zap.Logger
	baseURL             string
}

// NewTTSService creates a new TTS service
func NewTTSService(apiKey, modelID, outputFormat string, timeout time.Duration, logger *zap.Logger) *TTSService {
	if apiKey == "" {
		return &TTSService{logger: logger}
	}

	return &TTSService{
		apiKey:              apiKey,
		defaultModelID:      modelID,
		defaultOutputFormat: outputFormat,
		httpClient:          client.NewHTTPClient("elevenlabs", timeout),
		logger:              logger,
		baseURL:             "https://api.elevenlabs.io/v1",
	}
}

// IsAvailable checks if TTS service is available
func (s *TTSService) IsAvailable() bool {
	return s.apiKey != ""
}

// TTSRequest represents a TTS request
type TTSRequest struct {
	Text            string
	VoiceID         string
	ModelID         string
	OutputFormat    string
	Stability       float64
	SimilarityBoost float64
	Style           float64
	UseSpeakerBoost bool
}

// TextToSpeech converts text to speech audio
func (s *TTSService) TextToSpeech(ctx context.Context, req *TTSRequest) ([]byte, error) {
	if !s.IsAvailable() {
		return nil, fmt.Errorf("TTS service not available. Set ELEVENLABS_API_KEY environment variable")
	}

	if req.Text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = defaultElevenLabsVoiceID
	}

	modelID := req.ModelID
	if modelID == "" {
		modelID = s.defaultModelID
	}
	if modelID == "" {
		modelID = "eleven_multilingual_v2"
	}

	outputFormat := req.OutputFormat
	if outputFormat == "" {
		outputFormat = s.defaultOutputFormat
	}
	if outputFormat == "" {
		outputFormat = "mp3_44100_128"
	}

	stability := req.Stability
	if stability == 0 {
		stability = 0.5
	}

	similarityBoost := req.SimilarityBoost
	if similarityBoost == 0 {
		similarityBoost = 0.75
	}

	requestBody := map[string]interface{}{
		"text":     req.Text,
		"model_id": modelID,
		"voice_settings": map[string]interface{}{
			"stability":         stability,
			"similarity_boost":  similarityBoost,
			"style":             req.Style,
			"use_speaker_boost": req.UseSpeakerBoost,
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s", s.baseURL, voiceID, outputFormat)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", s.apiKey)
	httpReq.Header.Set("Accept", "audio/mpeg")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ElevenLabs API error: %d - %s", resp.StatusCode, string(body))
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	if len(audioData) == 0 {
		return nil, fmt.Errorf("no audio data received")
	}

	return audioData, nil
}

// Voice is one entry of the ElevenLabs voice library
type Voice struct {
	VoiceID  string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// GetAvailableVoices returns list of available voices
func (s *TTSService) GetAvailableVoices(ctx context.Context) ([]Voice, error) {
	if !s.IsAvailable() {
		return nil, fmt.Errorf("TTS service not available. Set ELEVENLABS_API_KEY environment variable")
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ElevenLabs API error: %d - %s", resp.StatusCode, string(body))
	}

	var voicesResp struct {
		Voices []Voice `json:"voices"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&voicesResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return voicesResp.Voices, nil
}
