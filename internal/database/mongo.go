package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"library/internal/config"
)

var mongoConnect = mongo.Connect

// NewMongo connects to MongoDB and verifies the primary answers a ping.
// The client is disconnected again when the ping fails.
func NewMongo(ctx context.Context, c config.MongoConfig) (*mongo.Client, error) {
	if c.URI == "" {
		return nil, fmt.Errorf("invalid mongo config: uri is required")
	}

	timeout := time.Duration(c.ConnectTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	opts := options.Client().
		ApplyURI(c.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongoConnect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, nil
}
