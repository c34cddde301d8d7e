package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewMongoDB opens a pooled client and verifies it with a ping.
func NewMongoDB(ctx context.Context, uri, dbName string, logger *slog.Logger) (*mongo.Database, error) {
	logger.Info("connecting to mongodb", "db", dbName)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetMaxPoolSize(20))
	if err != nil {
		return nil, fmt.Errorf("mongodb connection error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	logger.Info("mongodb connected")

	return client.Database(dbName), nil
}
