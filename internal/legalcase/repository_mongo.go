package legalcase

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

var caseFields = query.Fields{
	FieldOwner:      "owner",
	FieldStatus:     "status",
	FieldCaseNumber: "caseNumber",
	FieldPriority:   "priority",
	FieldCreatedAt:  "createdAt",
}

type mongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a Repository backed by the cases collection.
func NewMongoRepository(database *mongo.Database) Repository {
	return &mongoRepository{coll: database.Collection(db.CasesCollection)}
}

func (r *mongoRepository) Query(ctx context.Context, filters []query.Filter, order *query.Order, limit int) ([]*Case, error) {
	filter, err := caseFields.BSON(filters)
	if err != nil {
		return nil, err
	}
	sort, err := caseFields.Sort(order)
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
		return nil, fmt.Errorf("query cases failed: %w", err)
	}
	var cases []*Case
	if err := cur.All(ctx, &cases); err != nil {
		return nil, fmt.Errorf("decode cases failed: %w", err)
	}
	return cases, nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id string) (*Case, error) {
	var c Case
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get case failed: %w", err)
	}
	return &c, nil
}

func (r *mongoRepository) Create(ctx context.Context, c *Case) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	touch(c, true)
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("create case failed: %w", err)
	}
	return nil
}

func (r *mongoRepository) Update(ctx context.Context, c *Case) error {
	touch(c, false)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return fmt.Errorf("update case failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete case failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
