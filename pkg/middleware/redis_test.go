package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/troikatech/voice-assistant/pkg/webhook"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

// turnRouter mounts a counting webhook handler behind signature and idempotency checks
func turnRouter(client *redis.Client, secret string, status int, calls *int) *gin.Engine {
	r := gin.New()
	r.POST("/voice/turn",
		WebhookSignature(secret, zap.NewNop()),
		IdempotencyMiddleware(client, zap.NewNop()),
		func(c *gin.Context) {
			*calls++
			c.JSON(status, gin.H{"reply_text": "hello", "call": *calls})
		},
	)
	return r
}

func postTurn(r *gin.Engine, body, key, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/voice/turn", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	if signature != "" {
		req.Header.Set(webhook.SignatureHeader, signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyMiddleware_ReplaysStoredResponse(t *testing.T) {
	_, client := newTestRedis(t)
	calls := 0
	r := turnRouter(client, "", http.StatusOK, &calls)
	body := `{"call_sid":"CA1","utterance":"hi"}`

	first := postTurn(r, body, "CA1-t1", "")
	second := postTurn(r, body, "CA1-t1", "")

	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
	if second.Code != http.StatusOK || second.Body.String() != first.Body.String() {
		t.Errorf("replay = %d %q, want %q", second.Code, second.Body.String(), first.Body.String())
	}
	if second.Header().Get("X-Idempotency-Key-Used") != "true" {
		t.Error("replay header missing")
	}

	postTurn(r, body, "CA1-t2", "")
	postTurn(r, body, "", "")
	if calls != 3 {
		t.Errorf("handler ran %d times, want 3 for a new key and no key", calls)
	}
}

func TestIdempotencyMiddleware_SkipsFailedResponses(t *testing.T) {
	_, client := newTestRedis(t)
	calls := 0
	r := turnRouter(client, "", http.StatusBadGateway, &calls)

	postTurn(r, `{}`, "CA2-t1", "")
	w := postTurn(r, `{}`, "CA2-t1", "")

	if calls != 2 {
		t.Errorf("handler ran %d times, want 2", calls)
	}
	if w.Header().Get("X-Idempotency-Key-Used") != "" {
		t.Error("failed response was replayed")
	}
}

func TestIdempotencyMiddleware_RedisDownRunsHandler(t *testing.T) {
	mr, client := newTestRedis(t)
	mr.Close()
	calls := 0
	r := turnRouter(client, "", http.StatusOK, &calls)

	if w := postTurn(r, `{}`, "CA3-t1", ""); w.Code != http.StatusOK || calls != 1 {
		t.Errorf("status = %d, calls = %d", w.Code, calls)
	}
}

func TestIdempotencyMiddleware_ReplayRequiresSignature(t *testing.T) {
	_, client := newTestRedis(t)
	calls := 0
	r := turnRouter(client, "hook-secret", http.StatusOK, &calls)
	body := `{"call_sid":"CA4","utterance":"where is my order"}`
	signature := webhook.SignBody("hook-secret", []byte(body))

	if w := postTurn(r, body, "CA4-t1", signature); w.Code != http.StatusOK {
		t.Fatalf("signed status = %d", w.Code)
	}

	tests := []struct {
		name      string
		signature string
		want      int
	}{
		{"unsigned", "", http.StatusUnauthorized},
		{"forged", webhook.SignBody("guess", []byte(body)), http.StatusUnauthorized},
		{"signed retry", signature, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postTurn(r, body, "CA4-t1", tt.signature)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if tt.want != http.StatusOK && strings.Contains(w.Body.String(), "reply_text") {
				t.Errorf("stored reply leaked: %s", w.Body.String())
			}
		})
	}

	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}
}

func TestWebhookSignature_FormBody(t *testing.T) {
	r := gin.New()
	r.POST("/voice/turn", WebhookSignature("hook-secret", zap.NewNop()), func(c *gin.Context) {
		c.String(http.StatusOK, c.PostForm("call_sid"))
	})

	form := url.Values{"call_sid": {"CA5"}, "utterance": {"hello"}}
	signed := webhook.SignForm("hook-secret", form)

	for signature, want := range map[string]int{signed: http.StatusOK, "deadbeef": http.StatusUnauthorized} {
		req := httptest.NewRequest(http.MethodPost, "/voice/turn", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set(webhook.SignatureHeader, signature)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != want {
			t.Errorf("status = %d, want %d", w.Code, want)
		}
		if want == http.StatusOK && w.Body.String() != "CA5" {
			t.Errorf("handler saw call_sid %q, want CA5", w.Body.String())
		}
	}
}

func TestRateLimiter_PerUser(t *testing.T) {
	mr, client := newTestRedis(t)
	limiter := NewRateLimiter(client, 2)

	r := gin.New()
	r.GET("/api/resource", func(c *gin.Context) {
		c.Set("user_id", c.GetHeader("X-User"))
		c.Next()
	}, limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	get := func(user string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/resource", nil)
		req.Header.Set("X-User", user)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := get("u1"); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i+1, w.Code)
		}
	}

	w := get("u1")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") != "60" || w.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("headers = %v", w.Header())
	}

	if w := get("u2"); w.Code != http.StatusOK {
		t.Errorf("other user status = %d, want 200", w.Code)
	}

	mr.FastForward(61 * time.Second)
	if w := get("u1"); w.Code != http.StatusOK {
		t.Errorf("after window status = %d, want 200", w.Code)
	}
}

func TestRateLimiter_RedisDownLetsRequestsThrough(t *testing.T) {
	mr, client := newTestRedis(t)
	mr.Close()

	r := gin.New()
	r.GET("/api/resource", NewRateLimiter(client, 1).Middleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/resource", nil))
		if w.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", w.Code)
		}
	}
}
