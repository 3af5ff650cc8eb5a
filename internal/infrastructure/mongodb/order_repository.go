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

const ordersCollection = "order_lines"

// OrderRepository is the MongoDB-backed order store.
type OrderRepository struct {
	client     *mongodb.Client
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewOrderRepository creates the repository and ensures its indexes.
func NewOrderRepository(client *mongodb.Client, logger *logging.Logger) (*OrderRepository, error) {
	r := &OrderRepository{
		client:     client,
		collection: client.Collection(ordersCollection),
		logger:     logger.WithComponent("order-repository"),
	}
	if err := r.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("ensure order indexes: %w", err)
	}
	return r, nil
}

func (r *OrderRepository) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "orderNumber", Value: 1}}},
		{Keys: bson.D{{Key: "productCode", Value: 1}}},
		{Keys: bson.D{{Key: "manifestCode", Value: 1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// ReplaceAll swaps the whole order set atomically.
func (r *OrderRepository) ReplaceAll(ctx context.Context, lines []domain.OrderLine) error {
	start := time.Now()

	err := r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := r.collection.DeleteMany(sessCtx, bson.M{}); err != nil {
			return fmt.Errorf("clear orders: %w", err)
		}
		if len(lines) == 0 {
			return nil
		}
		docs := make([]interface{}, len(lines))
		for i := range lines {
			docs[i] = lines[i]
		}
		if _, err := r.collection.InsertMany(sessCtx, docs); err != nil {
			return fmt.Errorf("insert orders: %w", err)
		}
		return nil
	})

	r.logger.DatabaseQuery(ctx, ordersCollection, "replaceAll", time.Since(start), err == nil, int64(len(lines)))
	return err
}

// FindAll returns every stored order line.
func (r *OrderRepository) FindAll(ctx context.Context) ([]domain.OrderLine, error) {
	start := time.Now()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		r.logger.DatabaseQuery(ctx, ordersCollection, "findAll", time.Since(start), false, 0)
		return nil, fmt.Errorf("find orders: %w", err)
	}

	var lines []domain.OrderLine
	if err := cursor.All(ctx, &lines); err != nil {
		r.logger.DatabaseQuery(ctx, ordersCollection, "findAll", time.Since(start), false, 0)
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	r.logger.DatabaseQuery(ctx, ordersCollection, "findAll", time.Since(start), true, int64(len(lines)))
	return lines, nil
}

// Count returns the number of stored order lines.
func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
