package services

import (
	"context"
	"fmt"

	"github.com/superabroad/lead-intake/internal/models"
	"github.com/superabroad/lead-intake/internal/observability"
	"github.com/superabroad/lead-intake/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LeadStore persists leads
type LeadStore interface {
	Insert(ctx context.Context, lead *models.Lead) (primitive.ObjectID, error)
	List(ctx context.Context, skip, limit int64) ([]models.Lead, error)
	Count(ctx context.Context) (int64, error)
}

// leadListProjection is the set of fields returned by the admin listing
var leadListProjection = bson.M{
	"_id":         1,
	"fullName":    1,
	"email":       1,
	"phone":       1,
	"phoneE164":   1,
	"countryCode": 1,
	"course":      1,
	"useWhatsApp": 1,
	"timestamp":   1,
	"source":      1,
}

// MongoLeadStore stores leads in a MongoDB collection
type MongoLeadStore struct {
	collection *mongo.Collection
}

// NewMongoLeadStore creates a store backed by collection
func NewMongoLeadStore(collection *mongo.Collection) *MongoLeadStore {
	return &MongoLeadStore{collection: collection}
}

// track opens a span for one collection command. The returned func closes the
// span and counts the outcome.
func (s *MongoLeadStore) track(ctx context.Context, operation string) (context.Context, func(error)) {
	ctx, step := utils.TraceDatabaseOperation(ctx, operation, s.collection.Name())
	return ctx, func(err error) {
		status := "success"
		if err != nil {
			status = "error"
		}
		observability.DatabaseOperations.WithLabelValues(operation, status).Inc()
		step.End(err)
	}
}

// Insert stores lead and returns its generated id
func (s *MongoLeadStore) Insert(ctx context.Context, lead *models.Lead) (primitive.ObjectID, error) {
	ctx, done := s.track(ctx, "insert")
	result, err := utils.InsertOneWithTimeout(ctx, s.collection, lead, utils.DefaultQueryTimeout)
	done(err)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert lead: %w", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	lead.ID = id
	return id, nil
}

// List returns leads newest first
func (s *MongoLeadStore) List(ctx context.Context, skip, limit int64) ([]models.Lead, error) {
	opts := options.Find().
		SetProjection(leadListProjection).
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	ctx, done := s.track(ctx, "find")
	leads := []models.Lead{}
	err := utils.FindAllWithTimeout(ctx, s.collection, bson.M{}, opts, &leads, utils.DefaultQueryTimeout)
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

// Count returns the total number of stored leads
func (s *MongoLeadStore) Count(ctx context.Context) (int64, error) {
	ctx, done := s.track(ctx, "count")
	count, err := utils.CountDocumentsWithTimeout(ctx, s.collection, bson.M{}, utils.DefaultQueryTimeout)
	done(err)
	if err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return count, nil
}
