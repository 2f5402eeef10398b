package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"opshub-integrations-layer/internal/domain"
	"opshub-integrations-layer/internal/infrastructure/repository/entity"
	"opshub-integrations-layer/internal/ports"
)

// MongoConnectionRepository implements ConnectionRepository using MongoDB.
type MongoConnectionRepository struct {
	collection *mongo.Collection
}

// NewMongoConnectionRepository creates a new MongoDB connection repository.
func NewMongoConnectionRepository(db *mongo.Database) ports.ConnectionRepository {
	return &MongoConnectionRepository{
		collection: db.Collection("connections"),
	}
}

// Save creates or replaces a connection keyed by id.
func (r *MongoConnectionRepository) Save(ctx context.Context, conn *domain.Connection) error {
	doc := entity.MongoConnectionDocFromDomain(conn)
	doc.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"_id": conn.ID}
	update := bson.M{"$set": doc}

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to save connection: %w", err)
	}

	return nil
}

// GetActiveByUser retrieves the active connection for a user and provider.
func (r *MongoConnectionRepository) GetActiveByUser(ctx context.Context, userID, provider string) (*domain.Connection, error) {
	var doc entity.MongoConnectionDoc
	filter := bson.M{
		"userId":   userID,
		"provider": provider,
		"isActive": true,
	}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}

	return doc.ToDomain(), nil
}

// GetByAccount retrieves a connection by provider and account identifier.
func (r *MongoConnectionRepository) GetByAccount(ctx context.Context, provider, accountID string) (*domain.Connection, error) {
	var doc entity.MongoConnectionDoc
	filter := bson.M{
		"provider":  provider,
		"accountId": accountID,
	}

	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}

	return doc.ToDomain(), nil
}

// Delete removes a connection by id.
func (r *MongoConnectionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.NewNotFoundError("connection", id)
	}
	return nil
}
