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

type mongoEventRepo struct {
	col *mongo.Collection
}

func (r *mongoEventRepo) Create(ctx context.Context, e *model.Event) error {
	e.CreatedAt = now()
	e.UpdatedAt = e.CreatedAt
	if _, err := r.col.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (r *mongoEventRepo) GetByID(ctx context.Context, id uuid.UUID) (model.Event, error) {
	var e model.Event
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Event{}, ErrNotFound
		}
		return model.Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (r *mongoEventRepo) List(ctx context.Context, f EventFilter) ([]model.Event, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer cursor.Close(ctx)

	events := []model.Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

// Update replaces the mutable metadata fields and shifts both ticket
// counters by capacityDelta in a single conditional update. The filter
// requires available_tickets >= -capacityDelta, so shrinking capacity can
// never drive the available count negative, even when bookings race with
// the update.
func (r *mongoEventRepo) Update(ctx context.Context, e *model.Event, capacityDelta int) (model.Event, error) {
	filter := bson.M{"_id": e.ID}
	if capacityDelta < 0 {
		filter["available_tickets"] = bson.M{"$gte": -capacityDelta}
	}
	update := bson.M{
		"$set": bson.M{
			"title":        e.Title,
			"description":  e.Description,
			"date":         e.Date,
			"location":     e.Location,
			"category":     e.Category,
			"ticket_price": e.TicketPrice,
			"updated_at":   now(),
		},
		"$inc": bson.M{
			"total_tickets":     capacityDelta,
			"available_tickets": capacityDelta,
		},
	}
	var updated model.Event
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Distinguish a missing event from a rejected capacity change.
			if _, getErr := r.GetByID(ctx, e.ID); getErr != nil {
				return model.Event{}, getErr
			}
			return model.Event{}, ErrUnavailable
		}
		return model.Event{}, fmt.Errorf("update event: %w", err)
	}
	return updated, nil
}

func (r *mongoEventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoEventRepo) SetStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) (model.Event, error) {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": now()}}
	var updated model.Event
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Event{}, ErrNotFound
		}
		return model.Event{}, fmt.Errorf("set event status: %w", err)
	}
	return updated, nil
}

// Reserve is the booking-side half of the inventory transition. The filter
// and the $inc run as one atomic document update, so two concurrent
// reservations can never both succeed against the same remaining tickets.
func (r *mongoEventRepo) Reserve(ctx context.Context, id uuid.UUID, qty int) (model.Event, error) {
	filter := bson.M{
		"_id":               id,
		"status":            model.EventPublished,
		"available_tickets": bson.M{"$gte": qty},
	}
	update := bson.M{
		"$inc": bson.M{"available_tickets": -qty},
		"$set": bson.M{"updated_at": now()},
	}
	var updated model.Event
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Event{}, ErrUnavailable
		}
		return model.Event{}, fmt.Errorf("reserve tickets: %w", err)
	}
	return updated, nil
}

// Release is the cancellation-side half. The $gte guard on total versus
// available keeps the restored count within total_tickets.
func (r *mongoEventRepo) Release(ctx context.Context, id uuid.UUID, qty int) error {
	filter := bson.M{"_id": id}
	update := []bson.M{
		{"$set": bson.M{
			"available_tickets": bson.M{
				"$min": bson.A{
					bson.M{"$add": bson.A{"$available_tickets", qty}},
					"$total_tickets",
				},
			},
			"updated_at": now(),
		}},
	}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("release tickets: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
