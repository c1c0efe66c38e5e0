package client

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/troikatech/voice-assistant/pkg/circuitbreaker"
	"github.com/troikatech/voice-assistant/pkg/logger"
	"github.com/troikatech/voice-assistant/pkg/metrics"
)

// HTTPClient wraps http.Client with a per-service circuit breaker and call metrics.
// It never retries: provider fallback is the caller's decision.
type HTTPClient struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	serviceName    string
}

// NewHTTPClient creates a new HTTP client for one upstream service
func NewHTTPClient(serviceName string, timeout time.Duration) *HTTPClient {
	return NewHTTPClientWithBreaker(serviceName, timeout, circuitbreaker.DefaultConfig())
}

// NewHTTPClientWithBreaker creates a client with an explicit breaker configuration
func NewHTTPClientWithBreaker(serviceName string, timeout time.Duration, cbConfig circuitbreaker.Config) *HTTPClient {
	breaker := circuitbreaker.New(cbConfig)
	breaker.OnStateChange(func(from, to circuitbreaker.State) {
		logger.Log.Warn("Provider circuit breaker changed state",
			zap.String("service", serviceName),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	})

	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		circuitBreaker: breaker,
		serviceName:    serviceName,
	}
}

// ServiceName returns the upstream service label used for metrics
func (c *HTTPClient) ServiceName() string {
	return c.serviceName
}

// Do executes the request through the circuit breaker. Responses with status >= 500
// count as breaker failures but are still returned to the caller.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	var resp *http.Response

	err := c.circuitBreaker.Execute(req.Context(), func() error {
		var doErr error
		resp, doErr = c.client.Do(req)
		if doErr != nil {
			return doErr
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("server error: %d", resp.StatusCode)
		}
		return nil
	})

	latency := time.Since(start)
	success := err == nil && resp != nil && resp.StatusCode < 400
	metrics.RecordServiceCall(c.serviceName, success, latency)

	stats := c.circuitBreaker.Stats()
	metrics.UpdateCircuitBreaker(c.serviceName, stats.State.String(), int64(stats.Failures))

	if err != nil && resp != nil && resp.StatusCode >= 500 {
		// hand the 5xx body back so the provider can report it
		return resp, nil
	}
	return resp, err
}
