package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TestLocalDriver_PutGet(t *testing.T) {
	d := NewLocalDriver(t.TempDir(), "")
	ctx := context.Background()

	if err := d.Put(ctx, "turn-1", Audio{Data: []byte("audio"), ContentType: "audio/wav"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := d.Get(ctx, "turn-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got.Data) != "audio" {
		t.Errorf("Get() data = %q, want audio", got.Data)
	}
	if got.ContentType != "audio/wav" {
		t.Errorf("Get() content type = %q, want audio/wav", got.ContentType)
	}
}

func TestLocalDriver_MissingContentTypeDefaults(t *testing.T) {
	d := NewLocalDriver(t.TempDir(), "")
	ctx := context.Background()

	if err := d.Put(ctx, "turn-1", Audio{Data: []byte("audio")}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	got, err := d.Get(ctx, "turn-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ContentType != DefaultContentType {
		t.Errorf("Get() content type = %q, want %q", got.ContentType, DefaultContentType)
	}
}

func TestRedisDriver_PutGet(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	d := NewRedisDriver(client, time.Minute)
	ctx := context.Background()

	if _, err := d.Get(ctx, "turn-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() before Put error = %v, want ErrNotFound", err)
	}

	audio := Audio{Data: []byte{0xff, 0xf3, 0x00, 0x01}, ContentType: "audio/L16; rate=16000"}
	if err := d.Put(ctx, "turn-1", audio); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := d.Get(ctx, "turn-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got.Data) != string(audio.Data) || got.ContentType != audio.ContentType {
		t.Errorf("Get() = %+v, want %+v", got, audio)
	}

	if ttl := mr.TTL(turnAudioKey("turn-1")); ttl != time.Minute {
		t.Errorf("TTL = %v, want 1m", ttl)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := d.Get(ctx, "turn-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after expiry error = %v, want ErrNotFound", err)
	}
}

func TestRedisAudioCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewRedisAudioCache(client, time.Minute, zap.NewNop())
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "k"); ok {
		t.Fatal("Get() hit on empty cache")
	}
	cache.Set(ctx, "k", []byte("audio"))
	if got, ok := cache.Get(ctx, "k"); !ok || string(got) != "audio" {
		t.Errorf("Get() = %q, %v; want audio, true", got, ok)
	}

	mr.Close()
	if _, ok := cache.Get(ctx, "k"); ok {
		t.Error("Get() should miss when redis is down")
	}
}

func TestLocalDriver_NotFound(t *testing.T) {
	d := NewLocalDriver(t.TempDir(), "wav")
	if _, err := d.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestLocalDriver_PathStaysInBase(t *testing.T) {
	base := t.TempDir()
	d := NewLocalDriver(base, ".wav")

	p := d.Path("../../etc/passwd")
	if filepath.Dir(p) != base {
		t.Errorf("Path() = %q escapes %q", p, base)
	}
	if filepath.Ext(p) != ".wav" {
		t.Errorf("Path() extension = %q, want .wav", filepath.Ext(p))
	}
}

func TestLocalDriver_RequiresTurnID(t *testing.T) {
	d := NewLocalDriver(t.TempDir(), "")
	if err := d.Put(context.Background(), "", Audio{Data: []byte("x")}); err == nil {
		t.Error("Put() expected error for empty turn id")
	}
}

func TestNewDriver(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	tests := []struct {
		name       string
		driverType string
		client     *redis.Client
		wantErr    bool
	}{
		{"redis", "redis", client, false},
		{"default is redis", "", client, false},
		{"redis without client", "redis", nil, true},
		{"local", "local", nil, false},
		{"unknown", "s3", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDriver(tt.driverType, tt.client, time.Minute, t.TempDir())
			if (err != nil) != tt.wantErr {
				t.Errorf("NewDriver() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
