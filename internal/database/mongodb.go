package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo dials MongoDB and confirms the primary answers a ping.
// The caller owns the client and releases it with Disconnect.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	var client *mongo.Client
	err := dialWithRetry(ctx, "mongodb", func() error {
		dialCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		c, err := mongo.Connect(dialCtx, options.Client().ApplyURI(uri).SetServerSelectionTimeout(timeout))
		if err != nil {
			return err
		}
		if err := c.Ping(dialCtx, readpref.Primary()); err != nil {
			_ = c.Disconnect(dialCtx)
			return err
		}
		client = c
		return nil
	})
	return client, err
}
