// File: database/repository/slot/crud.go
package slotRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"slotify/models"
)

func (r *mongoSlotRepo) Create(ctx context.Context, slot models.Slot) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}

	if _, err := r.coll.InsertOne(ctx, slot); err != nil {
		return nil, fmt.Errorf("failed to insert slot: %w", err)
	}
	return &slot, nil
}

func (r *mongoSlotRepo) GetByID(ctx context.Context, slotID string) (*models.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.Slot
	err := r.coll.FindOne(ctx, bson.M{"id": slotID}).Decode(&slot)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("failed to fetch slot %s: %w", slotID, err)
	}
	return &slot, nil
}

// BookIfFree atomically flips booked from false to true on the slot with the
// given id, stamping the requester's details in the same write. The filter
// carries the expected prior state, so of two racing callers exactly one
// observes ModifiedCount == 1; the loser gets false with a nil error.
func (r *mongoSlotRepo) BookIfFree(ctx context.Context, slotID string, meeting models.MeetingRequest) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": slotID, "booked": false}
	update := bson.M{
		"$set": bson.M{
			"booked":       true,
			"title":        meeting.Title,
			"description":  meeting.Description,
			"name":         meeting.Name,
			"phone_number": meeting.PhoneNumber,
		},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to book slot %s: %w", slotID, err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *mongoSlotRepo) DeleteUnbookedEndingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	filter := bson.M{
		"booked":   false,
		"end_time": bson.M{"$lt": cutoff},
	}
	res, err := r.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale slots: %w", err)
	}
	return res.DeletedCount, nil
}
