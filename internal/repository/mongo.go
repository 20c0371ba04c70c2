package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names within the application database.
const (
	colAccounts = "accounts"
	colEvents   = "events"
	colBookings = "bookings"
	colTokens   = "refresh_tokens"
)

// Connect opens a MongoDB client and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// Mongo bundles the collection handles shared by the Mongo-backed repos.
type Mongo struct {
	db *mongo.Database
}

// NewMongo returns a Mongo store bound to the named database.
func NewMongo(client *mongo.Client, dbName string) *Mongo {
	return &Mongo{db: client.Database(dbName)}
}

// EnsureIndexes creates the unique indexes the data model relies on:
// account email, booking reference, and the refresh-token hash with a TTL
// expiry. Index creation is idempotent.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.db.Collection(colAccounts).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("accounts email index: %w", err)
	}
	_, err = m.db.Collection(colBookings).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "reference", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("bookings reference index: %w", err)
	}
	_, err = m.db.Collection(colTokens).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token_hash", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	if err != nil {
		return fmt.Errorf("refresh token indexes: %w", err)
	}
	return nil
}

// Accounts returns the Mongo-backed account repository.
func (m *Mongo) Accounts() AccountRepo { return &mongoAccountRepo{col: m.db.Collection(colAccounts)} }

// Events returns the Mongo-backed event repository.
func (m *Mongo) Events() EventRepo { return &mongoEventRepo{col: m.db.Collection(colEvents)} }

// Bookings returns the Mongo-backed booking repository.
func (m *Mongo) Bookings() BookingRepo { return &mongoBookingRepo{col: m.db.Collection(colBookings)} }

// Tokens returns the Mongo-backed refresh-token repository.
func (m *Mongo) Tokens() TokenRepo { return &mongoTokenRepo{col: m.db.Collection(colTokens)} }
