package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eventra/event-ticketing/internal/model"
)

type mongoTokenRepo struct {
	col *mongo.Collection
}

func (r *mongoTokenRepo) Store(ctx context.Context, t model.RefreshToken) error {
	t.CreatedAt = now()
	if _, err := r.col.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// Validate returns the owning account for a non-revoked, non-expired token
// hash. Expired rows linger until the TTL monitor sweeps them, so the
// expiry is checked here as well.
func (r *mongoTokenRepo) Validate(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	var t model.RefreshToken
	err := r.col.FindOne(ctx, bson.M{"token_hash": tokenHash}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return uuid.Nil, ErrTokenInvalid
		}
		return uuid.Nil, fmt.Errorf("lookup refresh token: %w", err)
	}
	if t.RevokedAt != nil || now().After(t.ExpiresAt) {
		return uuid.Nil, ErrTokenInvalid
	}
	return t.AccountID, nil
}

func (r *mongoTokenRepo) Revoke(ctx context.Context, tokenHash string) error {
	ts := now()
	_, err := r.col.UpdateOne(ctx,
		bson.M{"token_hash": tokenHash, "revoked_at": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"revoked_at": ts}})
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
