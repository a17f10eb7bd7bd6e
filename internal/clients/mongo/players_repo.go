package mongo

import (
	"context"
	"errors"
	"fmt"

	"roster-pulse/internal/logger"
	"roster-pulse/internal/roster"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// PlayersRepo implements the roster.Repository interface for MongoDB.
type PlayersRepo struct {
	collection *mongo.Collection
}

// NewPlayersRepo creates the players repository over the players collection.
func NewPlayersRepo(parentCtx context.Context, db *mongo.Database) (*PlayersRepo, error) {
	collection := db.Collection("players")

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "legacyId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	ctx, cancel := context.WithTimeout(parentCtx, OpTimeout)
	defer cancel()

	for _, indexModel := range indexes {
		_, err := collection.Indexes().CreateOne(ctx, indexModel)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				logger.L().Debug("index already exists, continuing", "collection", "players")
			} else {
				logger.L().Error("failed to create index", "collection", "players", "error", err)
				return nil, fmt.Errorf("failed to create players collection index: %w", err)
			}
		}
	}

	return &PlayersRepo{collection: collection}, nil
}

// Upsert writes the roster fields for p. The jersey number is only written
// on first insert so that re-importing a roster never wipes assignments made
// since the last import.
func (r *PlayersRepo) Upsert(ctx context.Context, p *roster.Player) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{"_id": p.ID}
	update := bson.M{
		"$set": bson.M{
			"legacyId":   p.LegacyID,
			"firstName":  p.FirstName,
			"lastName":   p.LastName,
			"dob":        p.DOB,
			"school":     p.School,
			"position":   p.Position,
			"importedAt": p.ImportedAt,
		},
		"$setOnInsert": bson.M{
			"jersey": p.Jersey,
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	return err
}

// Get fetches one player by ID.
func (r *PlayersRepo) Get(ctx context.Context, id string) (*roster.Player, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var p roster.Player
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, roster.ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns all players sorted by last then first name.
func (r *PlayersRepo) List(ctx context.Context) ([]*roster.Player, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func(ctxToClose context.Context) {
		if cerr := cursor.Close(ctxToClose); cerr != nil {
			logger.L().Error("failed to close cursor", "error", cerr)
		}
	}(ctx)

	var players []*roster.Player
	if err := cursor.All(ctx, &players); err != nil {
		return nil, err
	}
	return players, nil
}

// SetJersey assigns a jersey number and returns the updated player.
func (r *PlayersRepo) SetJersey(ctx context.Context, id, jersey string) (*roster.Player, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p roster.Player
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"jersey": jersey}},
		opts,
	).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, roster.ErrPlayerNotFound
		}
		return nil, err
	}
	return &p, nil
}
