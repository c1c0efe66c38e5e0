package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/troikatech/voice-assistant/internal/bootstrap"
	"github.com/troikatech/voice-assistant/pkg/ai"
	"github.com/troikatech/voice-assistant/pkg/env"
	"github.com/troikatech/voice-assistant/pkg/logger"
	"github.com/troikatech/voice-assistant/pkg/storage"
	"github.com/troikatech/voice-assistant/pkg/voice"
)

// voice-turn runs a single caller utterance through the pipeline with the
// providers configured in .env and writes any audio to a local directory.
func main() {
	utterance := flag.String("utterance", "", "caller utterance")
	language := flag.String("language", "english", "reply language")
	provider := flag.String("provider", "", "preferred TTS provider: google or elevenlabs")
	prior := flag.String("prior", "", "assistant's previous reply")
	outDir := flag.String("out", ".", "directory for the audio file")
	envFile := flag.String("env", ".env", "path to .env file")
	flag.Parse()

	if *utterance == "" {
		fmt.Fprintln(os.Stderr, "usage: voice-turn -utterance \"...\" [-language english] [-provider google] [-out dir]")
		os.Exit(2)
	}

	cfg, err := env.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Init(cfg.LogLevel, cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	pipeline := bootstrap.NewPipeline(cfg, bootstrap.NewProviders(cfg, logger.Log), nil, logger.Log)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result := pipeline.ProcessTurn(ctx, voice.TurnRequest{
		Utterance:         *utterance,
		Language:          *language,
		PreferredProvider: voice.ParseProvider(*provider),
		PriorReply:        *prior,
	})

	fmt.Printf("Context:  %s\n", result.ContextTag)
	fmt.Printf("Provider: %s\n", result.ProviderUsed)
	fmt.Printf("Reply:    %s\n", result.ReplyText)

	if result.Audio == nil {
		fmt.Println("No audio synthesized; the caller's device would speak the reply.")
		return
	}

	contentType := ai.GoogleContentType(cfg.GoogleTTSEncoding)
	if result.ProviderUsed == voice.ProviderElevenLabs {
		contentType = ai.ElevenLabsContentType(cfg.ElevenLabsOutputFormat)
	}

	store := storage.NewLocalDriver(*outDir, ai.AudioExtension(contentType))
	turnID := uuid.New().String()
	if err := store.Put(ctx, turnID, storage.Audio{Data: result.Audio, ContentType: contentType}); err != nil {
		log.Fatalf("Failed to write audio: %v", err)
	}
	fmt.Printf("Audio:    %s (%d bytes)\n", store.Path(turnID), len(result.Audio))
}
