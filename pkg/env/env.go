package env

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv  string
	AppPort string

	JWTSecret string

	RedisURL string

	MongoURI string
	DBName   string

	// LLM providers, tried in this order: OpenAI, Anthropic, Gemini
	OpenAIApiKey string
	OpenAIModel  string

	AnthropicApiKey string
	AnthropicModel  string

	GeminiApiKey string
	GeminiModel  string

	// TTS providerB (ElevenLabs)
	ElevenLabsApiKey       string
	ElevenLabsModel        string
	ElevenLabsOutputFormat string

	// TTS providerA (Google Cloud Text-to-Speech)
	GoogleTTSApiKey   string
	GoogleTTSLanguage string
	GoogleTTSEncoding string

	TTSPrimaryProvider string
	ProviderTimeoutMs  int

	ReplyMaxWords      int
	ReplyTruncateWords int
	SpeechPauseChars   int
	BusinessName       string

	AudioCacheTTLMin int

	WebhookSecret string

	APIRateLimitRPM    int
	LogLevel           string
	CORSAllowedOrigins string

	OTELEndpoint string
	OTELEnabled  bool
}

func Load(envFile string) (*Config, error) {
	if envFile != "" {
		// A missing .env is fine; production runs on plain environment variables
		if err := godotenv.Load(envFile); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		AppEnv:  getEnv("APP_ENV", "development"),
		AppPort: getEnv("APP_PORT", "8080"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:   getEnv("DB_NAME", "voice_assistant"),

		OpenAIApiKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		AnthropicApiKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-20241022"),

		GeminiApiKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		ElevenLabsApiKey:       getEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsModel:        getEnv("ELEVENLABS_MODEL", "eleven_multilingual_v2"),
		ElevenLabsOutputFormat: getEnv("ELEVENLABS_OUTPUT_FORMAT", "mp3_44100_128"),

		GoogleTTSApiKey:   getEnv("GOOGLE_TTS_API_KEY", ""),
		GoogleTTSLanguage: getEnv("GOOGLE_TTS_LANGUAGE", "en-US"),
		GoogleTTSEncoding: getEnv("GOOGLE_TTS_ENCODING", "MP3"),

		TTSPrimaryProvider: getEnv("TTS_PRIMARY_PROVIDER", "google"),
		ProviderTimeoutMs:  getEnvInt("PROVIDER_TIMEOUT_MS", 12000),

		ReplyMaxWords:      getEnvInt("REPLY_MAX_WORDS", 70),
		ReplyTruncateWords: getEnvInt("REPLY_TRUNCATE_WORDS", 65),
		SpeechPauseChars:   getEnvInt("SPEECH_PAUSE_CHARS", 120),
		BusinessName:       getEnv("BUSINESS_NAME", "our team"),

		AudioCacheTTLMin: getEnvInt("AUDIO_CACHE_TTL_MIN", 60),

		WebhookSecret: getEnv("WEBHOOK_SIGNATURE_SECRET", ""),

		APIRateLimitRPM:    getEnvInt("API_RATE_LIMIT_RPM", 180),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),

		OTELEndpoint: getEnv("OTEL_ENDPOINT", ""),
		OTELEnabled:  getEnvBool("OTEL_ENABLED", false),
	}

	if cfg.ReplyTruncateWords > cfg.ReplyMaxWords {
		return nil, fmt.Errorf("REPLY_TRUNCATE_WORDS (%d) must not exceed REPLY_MAX_WORDS (%d)",
			cfg.ReplyTruncateWords, cfg.ReplyMaxWords)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	strValue := os.Getenv(key)
	if strValue == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(strValue)
	if err != nil {
		return defaultValue
	}
	return value
}
