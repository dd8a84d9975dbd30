package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nekogravitycat/court-docket-backend/internal/db"
	"github.com/nekogravitycat/court-docket-backend/internal/pkg/query"
)

var clientFields = query.Fields{
	FieldOwner:     "owner",
	FieldEmail:     "email",
	FieldCreatedAt: "createdAt",
}

type mongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a Repository backed by the clients collection.
func NewMongoRepository(database *mongo.Database) Repository {
	return &mongoRepository{coll: database.Collection(db.ClientsCollection)}
}

func (r *mongoRepository) Query(ctx context.Context, filters []query.Filter, order *query.Order, limit int) ([]*Client, error) {
	filter, err := clientFields.BSON(filters)
	if err != nil {
		return nil, err
	}
	sort, err := clientFields.Sort(order)
	if err != nil {
		return nil, err
	}

	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query clients failed: %w", err)
	}
	var clients []*Client
	if err := cur.All(ctx, &clients); err != nil {
		return nil, fmt.Errorf("decode clients failed: %w", err)
	}
	return clients, nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id string) (*Client, error) {
	var c Client
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get client failed: %w", err)
	}
	return &c, nil
}

func (r *mongoRepository) Create(ctx context.Context, c *Client) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	touch(c, true)
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("create client failed: %w", err)
	}
	return nil
}

func (r *mongoRepository) Update(ctx context.Context, c *Client) error {
	touch(c, false)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return fmt.Errorf("update client failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete client failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
