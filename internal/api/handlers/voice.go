package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/troikatech/voice-assistant/pkg/ai"
	"github.com/troikatech/voice-assistant/pkg/audit"
	apperrors "github.com/troikatech/voice-assistant/pkg/errors"
	"github.com/troikatech/voice-assistant/pkg/logger"
	"github.com/troikatech/voice-assistant/pkg/metrics"
	"github.com/troikatech/voice-assistant/pkg/storage"
	"github.com/troikatech/voice-assistant/pkg/transcript"
	"github.com/troikatech/voice-assistant/pkg/utils"
	"github.com/troikatech/voice-assistant/pkg/voice"
)

type VoiceTurnRequest struct {
	CallSID           string `json:"call_sid" form:"call_sid" binding:"required"`
	From              string `json:"from" form:"from"`
	Utterance         string `json:"utterance" form:"utterance"`
	Language          string `json:"language" form:"language"`
	PreferredProvider string `json:"preferred_provider" form:"preferred_provider"`
	PriorReply        string `json:"prior_reply" form:"prior_reply"`
}

type VoiceTurnResponse struct {
	TurnID       string `json:"turn_id"`
	ReplyText    string `json:"reply_text"`
	ContextTag   string `json:"context_tag"`
	ProviderUsed string `json:"provider_used"`
	AudioURL     string `json:"audio_url,omitempty"`
	// ClientTTS tells the telephony layer to speak ReplyText on the device
	ClientTTS bool `json:"client_tts"`
}

// ProcessVoiceTurn runs one caller utterance through the pipeline. The webhook
// signature is checked by middleware. Provider failures never surface as
// errors; the response degrades to client-side TTS.
func (h *Handler) ProcessVoiceTurn(c *gin.Context) {
	start := time.Now()

	var req VoiceTurnRequest
	var err error
	if strings.HasPrefix(c.ContentType(), "application/json") {
		err = c.ShouldBindJSON(&req)
	} else {
		err = c.ShouldBind(&req)
	}
	if err != nil {
		apperrors.BadRequest(c, err.Error())
		return
	}

	result := h.pipeline.ProcessTurn(c.Request.Context(), voice.TurnRequest{
		Utterance:         req.Utterance,
		Language:          req.Language,
		PreferredProvider: voice.ParseProvider(req.PreferredProvider),
		PriorReply:        req.PriorReply,
	})

	turnID := uuid.New().String()
	resp := VoiceTurnResponse{
		TurnID:       turnID,
		ReplyText:    result.ReplyText,
		ContextTag:   result.ContextTag.String(),
		ProviderUsed: result.ProviderUsed.String(),
		ClientTTS:    result.Audio == nil,
	}

	if result.Audio != nil {
		audio := storage.Audio{Data: result.Audio, ContentType: h.audioContentType(result.ProviderUsed)}
		if err := h.audioStore.Put(c.Request.Context(), turnID, audio); err != nil {
			h.logger.Error("Failed to store turn audio, falling back to client TTS",
				zap.String("turn_id", turnID),
				zap.Error(err),
			)
			resp.ProviderUsed = voice.ProviderNone.String()
			resp.ClientTTS = true
		} else {
			resp.AudioURL = audioURL(c, turnID)
		}
	}

	turn := &transcript.Turn{
		TurnID:       turnID,
		CallSID:      req.CallSID,
		From:         utils.MaskPhoneNumber(req.From),
		Utterance:    req.Utterance,
		Language:     req.Language,
		ContextTag:   resp.ContextTag,
		ProviderUsed: resp.ProviderUsed,
		ReplyText:    resp.ReplyText,
		ClientTTS:    resp.ClientTTS,
	}
	if err := h.transcripts.Save(c.Request.Context(), turn); err != nil {
		h.logger.Warn("Failed to save turn transcript", zap.String("turn_id", turnID), zap.Error(err))
	}

	h.logger.Info("Voice turn answered",
		zap.String("call_sid", req.CallSID),
		logger.MaskPhoneIfPresent("from", req.From),
		zap.String("turn_id", turnID),
		zap.String("context", resp.ContextTag),
		zap.String("provider", resp.ProviderUsed),
	)

	metrics.RecordRequest("/voice/turn", true, time.Since(start))
	c.JSON(http.StatusOK, resp)
}

// GetTurnAudio serves the audio synthesized for a turn
func (h *Handler) GetTurnAudio(c *gin.Context) {
	turnID := c.Param("turn_id")

	audio, err := h.audioStore.Get(c.Request.Context(), turnID)
	if errors.Is(err, storage.ErrNotFound) {
		apperrors.NotFound(c, "audio not found or expired")
		return
	}
	if err != nil {
		apperrors.InternalError(c, err, h.logger)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s.%s", turnID, ai.AudioExtension(audio.ContentType)))
	c.Header("X-Content-Type-Options", "nosniff")
	c.Data(http.StatusOK, audio.ContentType, audio.Data)
}

// audioContentType is the MIME type of audio from the given provider under
// the configured encodings
func (h *Handler) audioContentType(provider voice.Provider) string {
	if provider == voice.ProviderElevenLabs {
		return ai.ElevenLabsContentType(h.cfg.ElevenLabsOutputFormat)
	}
	return ai.GoogleContentType(h.cfg.GoogleTTSEncoding)
}

// ListCallTurns returns a page of a call's transcript
func (h *Handler) ListCallTurns(c *gin.Context) {
	callSID := c.Param("call_sid")
	pagination := utils.ParsePagination(c)
	skip := int64((pagination.Page - 1) * pagination.Limit)

	turns, total, err := h.transcripts.ListByCall(c.Request.Context(), callSID, skip, int64(pagination.Limit))
	if err != nil {
		apperrors.InternalError(c, err, h.logger)
		return
	}

	_ = audit.Log(c.Request.Context(), h.mongoClient, audit.Event{
		UserID:       c.GetString("user_id"),
		Action:       audit.ActionViewTranscript,
		ResourceType: "call",
		ResourceID:   callSID,
		Metadata:     map[string]interface{}{"page": pagination.Page, "count": len(turns)},
	}, h.logger)

	c.JSON(http.StatusOK, utils.PaginatedResponse{
		Data:  turns,
		Page:  pagination.Page,
		Limit: pagination.Limit,
		Total: total,
		Count: len(turns),
	})
}

// ListVoices returns the ElevenLabs voices available to the account
func (h *Handler) ListVoices(c *gin.Context) {
	start := time.Now()

	if h.voices == nil || !h.voices.IsAvailable() {
		apperrors.ServiceUnavailable(c, "TTS service is not available")
		return
	}

	voices, err := h.voices.GetAvailableVoices(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get TTS voices", zap.Error(err))
		metrics.RecordRequest("/api/voice/voices", false, time.Since(start))
		apperrors.BadGateway(c, "Failed to get voices")
		return
	}

	metrics.RecordRequest("/api/voice/voices", true, time.Since(start))
	_ = audit.Log(c.Request.Context(), h.mongoClient, audit.Event{
		UserID:       c.GetString("user_id"),
		Action:       audit.ActionListVoices,
		ResourceType: "voice",
	}, h.logger)
	c.JSON(http.StatusOK, gin.H{
		"voices": voices,
		"count":  len(voices),
	})
}

func audioURL(c *gin.Context, turnID string) string {
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/voice/audio/%s", scheme, c.Request.Host, turnID)
}
