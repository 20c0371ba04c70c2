package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eventra/event-ticketing/internal/model"
)

type mongoBookingRepo struct {
	col *mongo.Collection
}

func (r *mongoBookingRepo) Create(ctx context.Context, b *model.Booking) error {
	b.CreatedAt = now()
	b.UpdatedAt = b.CreatedAt
	if _, err := r.col.InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateReference
		}
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Booking, error) {
	var b model.Booking
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Booking{}, ErrNotFound
		}
		return model.Booking{}, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

func (r *mongoBookingRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Booking, error) {
	return r.list(ctx, bson.M{"customer_id": customerID})
}

func (r *mongoBookingRepo) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Booking, error) {
	return r.list(ctx, bson.M{"event_id": eventID})
}

func (r *mongoBookingRepo) list(ctx context.Context, filter bson.M) ([]model.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []model.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return bookings, nil
}

// Cancel flips a booking to cancelled iff it is not cancelled already. The
// status guard in the filter makes the transition race-free: of two
// concurrent cancels only one matches, so the caller restores inventory
// exactly once.
func (r *mongoBookingRepo) Cancel(ctx context.Context, id uuid.UUID) (model.Booking, error) {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$ne": model.BookingCancelled},
	}
	update := bson.M{"$set": bson.M{"status": model.BookingCancelled, "updated_at": now()}}
	var updated model.Booking
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return model.Booking{}, getErr
			}
			return model.Booking{}, ErrAlreadyCancelled
		}
		return model.Booking{}, fmt.Errorf("cancel booking: %w", err)
	}
	return updated, nil
}
