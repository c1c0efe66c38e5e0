package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrNotFound is returned when no audio is stored for a turn
var ErrNotFound = errors.New("audio not found")

// DefaultContentType is reported for audio stored without a content type
const DefaultContentType = "audio/mpeg"

// Audio is a turn's synthesized speech and its MIME type
type Audio struct {
	Data        []byte
	ContentType string
}

// AudioStore holds synthesized audio for a turn until the telephony layer fetches it
type AudioStore interface {
	Put(ctx context.Context, turnID string, audio Audio) error
	Get(ctx context.Context, turnID string) (Audio, error)
}

// RedisDriver keeps turn audio in a Redis hash with a TTL
type RedisDriver struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDriver(client *redis.Client, ttl time.Duration) *RedisDriver {
	return &RedisDriver{client: client, ttl: ttl}
}

func turnAudioKey(turnID string) string {
	return "turn_audio:" + turnID
}

func (d *RedisDriver) Put(ctx context.Context, turnID string, audio Audio) error {
	if turnID == "" {
		return fmt.Errorf("turnID is required")
	}
	key := turnAudioKey(turnID)
	_, err := d.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "data", audio.Data, "content_type", audio.ContentType)
		pipe.Expire(ctx, key, d.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store turn audio: %w", err)
	}
	return nil
}

func (d *RedisDriver) Get(ctx context.Context, turnID string) (Audio, error) {
	fields, err := d.client.HGetAll(ctx, turnAudioKey(turnID)).Result()
	if err != nil {
		return Audio{}, fmt.Errorf("failed to load turn audio: %w", err)
	}
	data, ok := fields["data"]
	if !ok {
		return Audio{}, ErrNotFound
	}
	return Audio{Data: []byte(data), ContentType: orDefaultContentType(fields["content_type"])}, nil
}

// LocalDriver writes turn audio to files under basePath. The content type is
// kept in a ".type" file next to the audio.
type LocalDriver struct {
	basePath  string
	extension string
}

func NewLocalDriver(basePath, extension string) *LocalDriver {
	if basePath == "" {
		basePath = "/data/audio"
	}
	if extension == "" {
		extension = "mp3"
	}
	return &LocalDriver{basePath: basePath, extension: strings.TrimPrefix(extension, ".")}
}

// Path returns the file that holds a turn's audio
func (d *LocalDriver) Path(turnID string) string {
	return filepath.Join(d.basePath, fmt.Sprintf("%s.%s", filepath.Base(turnID), d.extension))
}

func (d *LocalDriver) typePath(turnID string) string {
	return d.Path(turnID) + ".type"
}

func (d *LocalDriver) Put(ctx context.Context, turnID string, audio Audio) error {
	if turnID == "" {
		return fmt.Errorf("turnID is required")
	}
	if err := os.MkdirAll(d.basePath, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}
	if err := os.WriteFile(d.Path(turnID), audio.Data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if audio.ContentType != "" {
		if err := os.WriteFile(d.typePath(turnID), []byte(audio.ContentType), 0644); err != nil {
			return fmt.Errorf("failed to write content type: %w", err)
		}
	}
	return nil
}

func (d *LocalDriver) Get(ctx context.Context, turnID string) (Audio, error) {
	data, err := os.ReadFile(d.Path(turnID))
	if os.IsNotExist(err) {
		return Audio{}, ErrNotFound
	}
	if err != nil {
		return Audio{}, fmt.Errorf("failed to read file: %w", err)
	}
	contentType, _ := os.ReadFile(d.typePath(turnID))
	return Audio{Data: data, ContentType: orDefaultContentType(string(contentType))}, nil
}

func orDefaultContentType(contentType string) string {
	if contentType == "" {
		return DefaultContentType
	}
	return contentType
}

// NewDriver picks an audio store by name
func NewDriver(driverType string, redisClient *redis.Client, ttl time.Duration, localPath string) (AudioStore, error) {
	switch strings.ToLower(driverType) {
	case "redis", "":
		if redisClient == nil {
			return nil, fmt.Errorf("redis driver requires a redis client")
		}
		return NewRedisDriver(redisClient, ttl), nil
	case "local":
		return NewLocalDriver(localPath, "mp3"), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", driverType)
	}
}

// RedisAudioCache caches synthesized audio by synthesis key. Cache errors are
// logged and treated as misses.
type RedisAudioCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisAudioCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisAudioCache {
	return &RedisAudioCache{client: client, ttl: ttl, logger: logger}
}

func (c *RedisAudioCache) Get(ctx context.Context, key string) ([]byte, bool) {
	audio, err := c.client.Get(ctx, "tts_cache:"+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Audio cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return audio, true
}

func (c *RedisAudioCache) Set(ctx context.Context, key string, audio []byte) {
	if err := c.client.Set(ctx, "tts_cache:"+key, audio, c.ttl).Err(); err != nil {
		c.logger.Warn("Audio cache write failed", zap.String("key", key), zap.Error(err))
	}
}
