package metrics

import (
	"strings"
	"testing"
	"time"
)

func TestRecordTurn_AppearsInMetrics(t *testing.T) {
	RecordTurn("metrics_test_tag", "metrics_test_provider")
	RecordReplyFallback()
	RecordTruncation()

	turns := GetMetrics()["turns"].(map[string]interface{})
	if got := turns["by_context"].(map[string]int64)["metrics_test_tag"]; got != 1 {
		t.Errorf("by_context[metrics_test_tag] = %d, want 1", got)
	}
	if got := turns["by_provider"].(map[string]int64)["metrics_test_provider"]; got != 1 {
		t.Errorf("by_provider[metrics_test_provider] = %d, want 1", got)
	}
	if got := turns["reply_fallbacks"].(int64); got < 1 {
		t.Errorf("reply_fallbacks = %d, want >= 1", got)
	}
}

func TestGetPrometheusMetrics_IncludesTurnSeries(t *testing.T) {
	RecordServiceCall("metrics_test_service", true, 10*time.Millisecond)
	RecordTurn("calm", "google")

	out := GetPrometheusMetrics()
	for _, want := range []string{
		"voice_turns_total{context=\"calm\"}",
		"voice_turn_provider_total{provider=\"google\"}",
		"voice_reply_truncations_total",
		"api_service_calls_total{service=\"metrics_test_service\"}",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("prometheus output missing %q", want)
		}
	}
}
