package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/volunhub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrOpportunityNotFound is returned when no opportunity matches the given id.
var ErrOpportunityNotFound = fmt.Errorf("opportunity not found")

// OpportunityRepository defines the interface for opportunity data operations
type OpportunityRepository interface {
	CreateOpportunity(ctx context.Context, opportunity *models.Opportunity) error
	GetOpportunityByID(ctx context.Context, id string) (*models.Opportunity, error)
	GetOpenOpportunities(ctx context.Context, limit int64) ([]models.Opportunity, error)
	GetOpportunitiesByNgoID(ctx context.Context, ngoID uint) ([]models.Opportunity, error)
	UpdateOpportunity(ctx context.Context, id string, opportunity *models.Opportunity) error
	DeleteOpportunity(ctx context.Context, id string) error
}

// MongoOpportunityRepository implements OpportunityRepository for MongoDB
type MongoOpportunityRepository struct {
	collection *mongo.Collection
}

// NewMongoOpportunityRepository creates a new MongoOpportunityRepository
func NewMongoOpportunityRepository(db *mongo.Database) *MongoOpportunityRepository {
	return &MongoOpportunityRepository{collection: db.Collection("opportunities")}
}

// CreateOpportunity creates a new opportunity in MongoDB
func (r *MongoOpportunityRepository) CreateOpportunity(ctx context.Context, opportunity *models.Opportunity) error {
	opportunity.ID = primitive.NewObjectID()
	opportunity.CreatedAt = time.Now()
	opportunity.UpdatedAt = time.Now()
	if opportunity.Status == "" {
		opportunity.Status = models.OpportunityStatusOpen
	}
	if opportunity.RequiredSkills == nil {
		opportunity.RequiredSkills = []string{}
	}
	_, err := r.collection.InsertOne(ctx, opportunity)
	return err
}

// GetOpportunityByID retrieves an opportunity by ID from MongoDB
func (r *MongoOpportunityRepository) GetOpportunityByID(ctx context.Context, id string) (*models.Opportunity, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid opportunity ID format: %w", err)
	}

	var opportunity models.Opportunity
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&opportunity)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrOpportunityNotFound
		}
		return nil, err
	}
	return &opportunity, nil
}

// GetOpenOpportunities retrieves open opportunities, newest first
func (r *MongoOpportunityRepository) GetOpenOpportunities(ctx context.Context, limit int64) ([]models.Opportunity, error) {
	var opportunities []models.Opportunity
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{"status": models.OpportunityStatusOpen}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &opportunities); err != nil {
		return nil, err
	}
	return opportunities, nil
}

// GetOpportunitiesByNgoID retrieves all opportunities posted by an NGO, newest first
func (r *MongoOpportunityRepository) GetOpportunitiesByNgoID(ctx context.Context, ngoID uint) ([]models.Opportunity, error) {
	var opportunities []models.Opportunity
	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"ngo_id": ngoID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &opportunities); err != nil {
		return nil, err
	}
	return opportunities, nil
}

// UpdateOpportunity updates an existing opportunity in MongoDB
func (r *MongoOpportunityRepository) UpdateOpportunity(ctx context.Context, id string, opportunity *models.Opportunity) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid opportunity ID format: %w", err)
	}

	opportunity.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"title":           opportunity.Title,
			"description":     opportunity.Description,
			"required_skills": opportunity.RequiredSkills,
			"duration":        opportunity.Duration,
			"location":        opportunity.Location,
			"status":          opportunity.Status,
			"updated_at":      opportunity.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrOpportunityNotFound
	}
	return nil
}

// DeleteOpportunity deletes an opportunity from MongoDB
func (r *MongoOpportunityRepository) DeleteOpportunity(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid opportunity ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrOpportunityNotFound
	}
	return nil
}
