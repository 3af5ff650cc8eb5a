package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/soaco-industrial/projection-service/internal/domain"
	"github.com/soaco-industrial/projection-service/pkg/logging"
	"github.com/soaco-industrial/projection-service/pkg/mongodb"
)

const accountsCollection = "user_accounts"

// AccountRepository is the MongoDB-backed account store.
type AccountRepository struct {
	client     *mongodb.Client
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewAccountRepository creates the repository and ensures its indexes.
func NewAccountRepository(client *mongodb.Client, logger *logging.Logger) (*AccountRepository, error) {
	r := &AccountRepository{
		client:     client,
		collection: client.Collection(accountsCollection),
		logger:     logger.WithComponent("account-repository"),
	}
	if err := r.ensureIndexes(context.Background()); err != nil {
		return nil, fmt.Errorf("ensure account indexes: %w", err)
	}
	return r, nil
}

func (r *AccountRepository) ensureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// FindAll returns every account.
func (r *AccountRepository) FindAll(ctx context.Context) ([]domain.UserAccount, error) {
	start := time.Now()

	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		r.logger.DatabaseQuery(ctx, accountsCollection, "findAll", time.Since(start), false, 0)
		return nil, fmt.Errorf("find accounts: %w", err)
	}

	var accounts []domain.UserAccount
	if err := cursor.All(ctx, &accounts); err != nil {
		r.logger.DatabaseQuery(ctx, accountsCollection, "findAll", time.Since(start), false, 0)
		return nil, fmt.Errorf("decode accounts: %w", err)
	}

	r.logger.DatabaseQuery(ctx, accountsCollection, "findAll", time.Since(start), true, int64(len(accounts)))
	return accounts, nil
}

// FindByUsername returns the account or nil when absent.
func (r *AccountRepository) FindByUsername(ctx context.Context, username string) (*domain.UserAccount, error) {
	var account domain.UserAccount
	err := r.collection.FindOne(ctx, bson.M{"username": username}).Decode(&account)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}

// Save inserts or replaces the account.
func (r *AccountRepository) Save(ctx context.Context, account *domain.UserAccount) error {
	start := time.Now()

	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": account.ID}, account, opts)
	r.logger.DatabaseQuery(ctx, accountsCollection, "save", time.Since(start), err == nil, 1)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

// Delete removes the account by id.
func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	start := time.Now()

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	r.logger.DatabaseQuery(ctx, accountsCollection, "delete", time.Since(start), err == nil, 1)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}
