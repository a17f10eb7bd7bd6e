package mongo

import (
	"context"
	"errors"
	"fmt"

	"roster-pulse/internal/logger"
	"roster-pulse/internal/services/notes"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// NotesRepo implements the notes.Repository interface for MongoDB.
type NotesRepo struct {
	collection *mongo.Collection
}

func repoCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return WithRepoTimeout(parent, OpTimeout)
}

// NewNotesRepo creates the notes repository over the playerNotes collection.
func NewNotesRepo(parentCtx context.Context, db *mongo.Database) (*NotesRepo, error) {
	collection := db.Collection("playerNotes")

	// The document key is the player ID; legacyId lets pre-migration
	// documents be found by their old position-based key.
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "legacyId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "timestamp", Value: -1}},
		},
	}

	ctx, cancel := context.WithTimeout(parentCtx, OpTimeout)
	defer cancel()

	for _, indexModel := range indexes {
		_, err := collection.Indexes().CreateOne(ctx, indexModel)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				logger.L().Debug("index already exists, continuing", "collection", "playerNotes")
			} else {
				logger.L().Error("failed to create index", "collection", "playerNotes", "error", err)
				return nil, fmt.Errorf("%w: %w", notes.ErrCreateNotesRepo, err)
			}
		}
	}

	return &NotesRepo{collection: collection}, nil
}

// Load fetches the note document for playerID. When nothing is stored under
// the stable ID it retries by legacy key, first as _id and then as the
// legacyId marker left by migrated documents. A missing document is not an
// error.
func (r *NotesRepo) Load(ctx context.Context, playerID, legacyID string) (*notes.NoteDocument, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filters := []bson.M{{"_id": playerID}}
	if legacyID != "" {
		filters = append(filters,
			bson.M{"_id": legacyID},
			bson.M{"legacyId": legacyID},
		)
	}

	for _, filter := range filters {
		var doc notes.NoteDocument
		err := r.collection.FindOne(ctx, filter).Decode(&doc)
		if err == nil {
			doc.Normalize()
			return &doc, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}
	}
	return nil, nil
}

// Save upserts the document under doc.DocID.
func (r *NotesRepo) Save(ctx context.Context, doc *notes.NoteDocument) error {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	filter := bson.M{"_id": doc.DocID}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, filter, doc, opts)
	return err
}

// List returns every note document, newest first.
func (r *NotesRepo) List(ctx context.Context) ([]*notes.NoteDocument, error) {
	ctx, cancel := repoCtx(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func(ctxToClose context.Context) {
		if cerr := cursor.Close(ctxToClose); cerr != nil {
			logger.L().Error("failed to close cursor", "error", cerr)
		}
	}(ctx)

	var docs []*notes.NoteDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		doc.Normalize()
	}
	return docs, nil
}
