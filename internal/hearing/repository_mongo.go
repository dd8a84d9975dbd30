package hearing

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

var hearingFields = query.Fields{
	FieldID:          "_id",
	FieldOwner:       "owner",
	FieldCaseID:      "caseId",
	FieldStatus:      "status",
	FieldHearingDate: "hearingDate",
	FieldHearingTime: "hearingTime",
	FieldStartAt:     "startAt",
	FieldDocuments:   "documentsToBring",
}

type mongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates a Repository backed by the hearings collection.
func NewMongoRepository(database *mongo.Database) Repository {
	return &mongoRepository{coll: database.Collection(db.HearingsCollection)}
}

func (r *mongoRepository) Query(ctx context.Context, filters []query.Filter, order *query.Order, limit int) ([]*Hearing, error) {
	filter, err := hearingFields.BSON(filters)
	if err != nil {
		return nil, err
	}
	sort, err := hearingFields.Sort(order)
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
		return nil, fmt.Errorf("query hearings failed: %w", err)
	}
	var hearings []*Hearing
	if err := cur.All(ctx, &hearings); err != nil {
		return nil, fmt.Errorf("decode hearings failed: %w", err)
	}
	return hearings, nil
}

func (r *mongoRepository) GetByID(ctx context.Context, id string) (*Hearing, error) {
	var h Hearing
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&h); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get hearing failed: %w", err)
	}
	return &h, nil
}

func (r *mongoRepository) Create(ctx context.Context, h *Hearing) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	fillEmpty(h)
	touch(h, true)
	if _, err := r.coll.InsertOne(ctx, h); err != nil {
		return fmt.Errorf("create hearing failed: %w", err)
	}
	return nil
}

func (r *mongoRepository) Update(ctx context.Context, h *Hearing) error {
	fillEmpty(h)
	touch(h, false)
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": h.ID}, h)
	if err != nil {
		return fmt.Errorf("update hearing failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete hearing failed: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoRepository) DeleteByCase(ctx context.Context, caseID string) error {
	filter, err := hearingFields.BSON([]query.Filter{query.Where(FieldCaseID, query.OpEq, caseID)})
	if err != nil {
		return err
	}
	if _, err := r.coll.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("delete case hearings failed: %w", err)
	}
	return nil
}
