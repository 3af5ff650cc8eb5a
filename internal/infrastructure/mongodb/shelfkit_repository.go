package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/soaco-industrial/projection-service/internal/domain"
	"github.com/soaco-industrial/projection-service/pkg/logging"
	"github.com/soaco-industrial/projection-service/pkg/mongodb"
)

const shelfKitsCollection = "shelf_kits"

// ShelfKitRepository is the MongoDB-backed shelf kit store.
type ShelfKitRepository struct {
	client     *mongodb.Client
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewShelfKitRepository creates the repository and ensures its indexes.
func NewShelfKitRepository(client *mongodb.Client, logger *logging.Logger) (*ShelfKitRepository, error) {
	r := &ShelfKitRepository{
		client:     client,
		collection: client.Collection(shelfKitsCollection),
		logger:     logger.WithComponent("shelfkit-repository"),
	}
	if err := r.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("ensure shelf kit indexes: %w", err)
	}
	return r, nil
}

func (r *ShelfKitRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "shelfCode", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// FindAll returns every kit definition.
func (r *ShelfKitRepository) FindAll(ctx context.Context) ([]domain.ShelfKit, error) {
	start := time.Now()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		r.logger.DatabaseQuery(ctx, shelfKitsCollection, "findAll", time.Since(start), false, 0)
		return nil, fmt.Errorf("find shelf kits: %w", err)
	}

	var kits []domain.ShelfKit
	if err := cursor.All(ctx, &kits); err != nil {
		r.logger.DatabaseQuery(ctx, shelfKitsCollection, "findAll", time.Since(start), false, 0)
		return nil, fmt.Errorf("decode shelf kits: %w", err)
	}

	r.logger.DatabaseQuery(ctx, shelfKitsCollection, "findAll", time.Since(start), true, int64(len(kits)))
	return kits, nil
}

// UpsertAll writes kit definitions keyed by shelf code.
func (r *ShelfKitRepository) UpsertAll(ctx context.Context, kits []domain.ShelfKit) error {
	start := time.Now()

	err := r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		for _, kit := range kits {
			filter := bson.M{"shelfCode": kit.ShelfCode}
			opts := options.Replace().SetUpsert(true)
			if _, err := r.collection.ReplaceOne(sessCtx, filter, kit, opts); err != nil {
				return fmt.Errorf("upsert shelf kit %s: %w", kit.ShelfCode, err)
			}
		}
		return nil
	})

	r.logger.DatabaseQuery(ctx, shelfKitsCollection, "upsertAll", time.Since(start), err == nil, int64(len(kits)))
	return err
}

// Delete removes one kit definition.
func (r *ShelfKitRepository) Delete(ctx context.Context, shelfCode string) error {
	start := time.Now()

	_, err := r.collection.DeleteOne(ctx, bson.M{"shelfCode": shelfCode})
	r.logger.DatabaseQuery(ctx, shelfKitsCollection, "delete", time.Since(start), err == nil, 1)
	if err != nil {
		return fmt.Errorf("delete shelf kit: %w", err)
	}
	return nil
}
