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

const routesCollection = "delivery_routes"

// RouteRepository is the MongoDB-backed route registry store.
type RouteRepository struct {
	client     *mongodb.Client
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewRouteRepository creates the repository and ensures its indexes.
func NewRouteRepository(client *mongodb.Client, logger *logging.Logger) (*RouteRepository, error) {
	r := &RouteRepository{
		client:     client,
		collection: client.Collection(routesCollection),
		logger:     logger.WithComponent("route-repository"),
	}
	if err := r.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("ensure route indexes: %w", err)
	}
	return r, nil
}

func (r *RouteRepository) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "sequence", Value: 1}}},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// FindAll returns the whole registry.
func (r *RouteRepository) FindAll(ctx context.Context) ([]domain.DeliveryRoute, error) {
	start := time.Now()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}}))
	if err != nil {
		r.logger.DatabaseQuery(ctx, routesCollection, "findAll", time.Since(start), false, 0)
		return nil, fmt.Errorf("find routes: %w", err)
	}

	var routes []domain.DeliveryRoute
	if err := cursor.All(ctx, &routes); err != nil {
		r.logger.DatabaseQuery(ctx, routesCollection, "findAll", time.Since(start), false, 0)
		return nil, fmt.Errorf("decode routes: %w", err)
	}

	r.logger.DatabaseQuery(ctx, routesCollection, "findAll", time.Since(start), true, int64(len(routes)))
	return routes, nil
}

// ReplaceAll swaps the whole registry atomically. The registry is small, a
// handful of routes at most, so a full rewrite is cheaper than diffing.
func (r *RouteRepository) ReplaceAll(ctx context.Context, routes []domain.DeliveryRoute) error {
	start := time.Now()

	err := r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := r.collection.DeleteMany(sessCtx, bson.M{}); err != nil {
			return fmt.Errorf("clear routes: %w", err)
		}
		if len(routes) == 0 {
			return nil
		}
		docs := make([]interface{}, len(routes))
		for i := range routes {
			docs[i] = routes[i]
		}
		if _, err := r.collection.InsertMany(sessCtx, docs); err != nil {
			return fmt.Errorf("insert routes: %w", err)
		}
		return nil
	})

	r.logger.DatabaseQuery(ctx, routesCollection, "replaceAll", time.Since(start), err == nil, int64(len(routes)))
	return err
}

// UpdateDate changes one route's planned date.
func (r *RouteRepository) UpdateDate(ctx context.Context, id string, date time.Time) error {
	start := time.Now()

	result, err := r.collection.UpdateByID(ctx, id, bson.M{"$set": bson.M{"date": date}})
	r.logger.DatabaseQuery(ctx, routesCollection, "updateDate", time.Since(start), err == nil, 1)
	if err != nil {
		return fmt.Errorf("update route date: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrUnknownRoute
	}
	return nil
}
