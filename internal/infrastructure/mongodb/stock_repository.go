package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/soaco-industrial/projection-service/internal/domain"
	"github.com/soaco-industrial/projection-service/pkg/logging"
	"github.com/soaco-industrial/projection-service/pkg/mongodb"
)

const stockCollection = "stock_items"

// StockRepository is the MongoDB-backed stock balance store.
type StockRepository struct {
	client     *mongodb.Client
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewStockRepository creates the repository and ensures its indexes.
func NewStockRepository(client *mongodb.Client, logger *logging.Logger) (*StockRepository, error) {
	r := &StockRepository{
		client:     client,
		collection: client.Collection(stockCollection),
		logger:     logger.WithComponent("stock-repository"),
	}
	if err := r.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("ensure stock indexes: %w", err)
	}
	return r, nil
}

func (r *StockRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "code", Value: 1}},
	})
	return err
}

// ReplaceAll swaps the whole balance set atomically.
func (r *StockRepository) ReplaceAll(ctx context.Context, items []domain.StockItem) error {
	start := time.Now()

	err := r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := r.collection.DeleteMany(sessCtx, bson.M{}); err != nil {
			return fmt.Errorf("clear stock: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		docs := make([]interface{}, len(items))
		for i := range items {
			docs[i] = items[i]
		}
		if _, err := r.collection.InsertMany(sessCtx, docs); err != nil {
			return fmt.Errorf("insert stock: %w", err)
		}
		return nil
	})

	r.logger.DatabaseQuery(ctx, stockCollection, "replaceAll", time.Since(start), err == nil, int64(len(items)))
	return err
}

// FindAll returns every stored balance row.
func (r *StockRepository) FindAll(ctx context.Context) ([]domain.StockItem, error) {
	start := time.Now()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		r.logger.DatabaseQuery(ctx, stockCollection, "findAll", time.Since(start), false, 0)
		return nil, fmt.Errorf("find stock: %w", err)
	}

	var items []domain.StockItem
	if err := cursor.All(ctx, &items); err != nil {
		r.logger.DatabaseQuery(ctx, stockCollection, "findAll", time.Since(start), false, 0)
		return nil, fmt.Errorf("decode stock: %w", err)
	}

	r.logger.DatabaseQuery(ctx, stockCollection, "findAll", time.Since(start), true, int64(len(items)))
	return items, nil
}
