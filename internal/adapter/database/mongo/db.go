package mongo

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"usersapi/pkg/config"
)

const (
	UsersCollection    = "users"
	CountersCollection = "counters"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	clientOptions := options.Client().ApplyURI(URI(cfg))

	if cfg.MaxOpenConns > 0 {
		clientOptions.SetMaxPoolSize(uint64(cfg.MaxOpenConns))
	}

	client, err := mongo.Connect(ctx, clientOptions)

	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := &DB{
		Client:   client,
		Database: client.Database(cfg.Name),
	}

	if err := db.EnsureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	logger.Info("MongoDB database ready",
		zap.String("database", cfg.Name),
		zap.String("collection", UsersCollection))

	return db, nil
}

// URI returns MONGO_URI when set, otherwise one built from host, port and
// credentials.
func URI(cfg config.DatabaseConfig) string {
	if cfg.MongoURI != "" {
		return cfg.MongoURI
	}

	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
	}

	if cfg.User != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}

	return u.String()
}

// EnsureIndexes creates the unique email index and the listing index. It is
// safe to run on every start.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	_, err := db.Users().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uq_users_email"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
			Options: options.Index().SetName("idx_users_created_at"),
		},
	})

	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	return nil
}

func (db *DB) Users() *mongo.Collection {
	return db.Database.Collection(UsersCollection)
}

func (db *DB) Counters() *mongo.Collection {
	return db.Database.Collection(CountersCollection)
}

func (db *DB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, readpref.Primary())
}

func (db *DB) Close(ctx context.Context) error {
	return db.Client.Disconnect(ctx)
}

func IsUniqueViolation(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
