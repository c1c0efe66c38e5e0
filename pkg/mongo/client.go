package mongo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const appName = "voice-assistant"

// Client holds the connection and the database that stores transcripts and
// the audit log
type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewClient connects and pings the primary. ctx bounds both; callers retry
// on error during startup.
func NewClient(ctx context.Context, mongoURI, dbName string, logger *zap.Logger) (*Client, error) {
	clientOptions := options.Client().
		ApplyURI(mongoURI).
		SetAppName(appName).
		SetMaxPoolSize(50).
		SetMinPoolSize(2).
		SetMaxConnIdleTime(time.Minute).
		SetServerSelectionTimeout(5 * time.Second).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB at %s: %w", maskURI(mongoURI), err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB at %s: %w", maskURI(mongoURI), err)
	}

	logger.Info("MongoDB connection established",
		zap.String("uri", maskURI(mongoURI)),
		zap.String("database", dbName),
	)

	return &Client{client: client, database: client.Database(dbName)}, nil
}

func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

// Ping checks the primary is reachable, for health checks
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, readpref.Primary())
}

func (c *Client) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// maskURI hides credentials in a connection string for logs and errors.
// Unparseable URIs, such as multi-host seed lists, are hidden entirely.
func maskURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Host == "" {
		return "***"
	}
	if u.User == nil {
		return u.Scheme + "://" + u.Host + u.Path
	}
	return u.Scheme + "://***@" + u.Host + u.Path
}
