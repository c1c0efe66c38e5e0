package transcript

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/troikatech/voice-assistant/pkg/mongo"
	"github.com/troikatech/voice-assistant/pkg/otel"
)

const collectionTurns = "turns"

// Turn is one processed caller utterance as persisted for review
type Turn struct {
	TurnID       string    `bson:"turn_id" json:"turn_id"`
	CallSID      string    `bson:"call_sid" json:"call_sid"`
	From         string    `bson:"from" json:"from"`
	Utterance    string    `bson:"utterance" json:"utterance"`
	Language     string    `bson:"language" json:"language"`
	ContextTag   string    `bson:"context_tag" json:"context_tag"`
	ProviderUsed string    `bson:"provider_used" json:"provider_used"`
	ReplyText    string    `bson:"reply_text" json:"reply_text"`
	ClientTTS    bool      `bson:"client_tts" json:"client_tts"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// Store persists turn transcripts
type Store interface {
	Save(ctx context.Context, turn *Turn) error
	ListByCall(ctx context.Context, callSID string, skip, limit int64) ([]Turn, int64, error)
}

// MongoStore keeps turns in the "turns" collection
type MongoStore struct {
	client *mongo.Client
}

func NewMongoStore(client *mongo.Client) *MongoStore {
	return &MongoStore{client: client}
}

// EnsureIndexes creates the index that backs ListByCall
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.client.Collection(collectionTurns).Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys: bson.D{{Key: "call_sid", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create turn index: %w", err)
	}
	return nil
}

func (s *MongoStore) Save(ctx context.Context, turn *Turn) error {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	err := otel.WithDBSpan(ctx, collectionTurns, "INSERT", func(ctx context.Context) (int64, error) {
		if _, err := s.client.NewQuery(collectionTurns).Insert(ctx, turn); err != nil {
			return 0, err
		}
		return 1, nil
	})
	if err != nil {
		return fmt.Errorf("failed to save turn: %w", err)
	}
	return nil
}

// ListByCall returns a page of a call's turns in the order they happened and
// the total number of turns for the call
func (s *MongoStore) ListByCall(ctx context.Context, callSID string, skip, limit int64) ([]Turn, int64, error) {
	var (
		turns []Turn
		total int64
	)

	err := otel.WithDBSpan(ctx, collectionTurns, "SELECT", func(ctx context.Context) (int64, error) {
		var err error
		total, err = s.client.NewQuery(collectionTurns).Eq("call_sid", callSID).Count(ctx)
		if err != nil {
			return 0, err
		}

		err = s.client.NewQuery(collectionTurns).
			Eq("call_sid", callSID).
			Sort("created_at", true).
			Skip(skip).
			Limit(limit).
			FindInto(ctx, &turns)
		return int64(len(turns)), err
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list turns: %w", err)
	}

	if turns == nil {
		turns = []Turn{}
	}
	return turns, total, nil
}

// MemoryStore keeps turns in process memory. It backs the CLI and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	turns []Turn
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(ctx context.Context, turn *Turn) error {
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, *turn)
	return nil
}

func (s *MemoryStore) ListByCall(ctx context.Context, callSID string, skip, limit int64) ([]Turn, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []Turn{}
	for _, t := range s.turns {
		if t.CallSID == callSID {
			matched = append(matched, t)
		}
	}
	total := int64(len(matched))

	if skip >= total {
		return []Turn{}, total, nil
	}
	end := total
	if limit > 0 && skip+limit < total {
		end = skip + limit
	}
	return matched[skip:end], total, nil
}
