package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/troikatech/voice-assistant/pkg/mongo"
)

const collectionAuditLog = "audit_log"

// Action represents an audit action
type Action string

const (
	ActionViewTranscript Action = "view_transcript"
	ActionListVoices     Action = "list_voices"
)

// Event is one operator action on caller data
type Event struct {
	UserID       string                 `bson:"user_id"`
	Action       Action                 `bson:"action"`
	ResourceType string                 `bson:"resource_type"`
	ResourceID   string                 `bson:"resource_id"`
	Metadata     map[string]interface{} `bson:"metadata,omitempty"`
	CreatedAt    time.Time              `bson:"created_at"`
}

// Log records an audit event. Without a MongoDB client it is a no-op; a failed
// insert is logged and returned but callers are not expected to fail the request.
func Log(ctx context.Context, client *mongo.Client, event Event, logger *zap.Logger) error {
	if client == nil {
		return nil
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := client.NewQuery(collectionAuditLog).Insert(ctx, event); err != nil {
		logger.Error("Failed to log audit event",
			zap.Error(err),
			zap.String("action", string(event.Action)),
			zap.String("resource_type", event.ResourceType),
		)
		return err
	}

	return nil
}
