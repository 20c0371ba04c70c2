package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eventra/event-ticketing/internal/model"
)

type mongoAccountRepo struct {
	col *mongo.Collection
}

// Create inserts an account. Emails are normalized to lower case before
// insertion; the unique index turns races on the same email into
// ErrEmailExists for the loser.
func (r *mongoAccountRepo) Create(ctx context.Context, a *model.Account) error {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	a.CreatedAt = now()
	a.UpdatedAt = a.CreatedAt
	if _, err := r.col.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *mongoAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Account, error) {
	var a model.Account
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *mongoAccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var a model.Account
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, fmt.Errorf("get account by email: %w", err)
	}
	return a, nil
}
