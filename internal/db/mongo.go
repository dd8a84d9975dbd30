package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names shared by the mongo repositories.
const (
	UsersCollection    = "users"
	ClientsCollection  = "clients"
	CasesCollection    = "cases"
	HearingsCollection = "hearings"
)

// NewMongo connects to MongoDB and returns the named database.
// It pings the primary to ensure the connection is valid.
func NewMongo(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, client.Database(database), nil
}

// EnsureIndexes creates the indexes the repositories rely on.
// CreateMany is a no-op for indexes that already exist with the same keys and options.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ClientsCollection: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "email", Value: 1}}},
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		CasesCollection: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "status", Value: 1}}},
		},
		HearingsCollection: {
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "caseId", Value: 1}}},
			{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "hearingDate", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}
