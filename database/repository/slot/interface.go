// File: database/repository/slot/interface.go
package slotRepo

import (
	"context"
	"time"

	"slotify/config"
	"slotify/database"
	"slotify/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// SlotRepository provides durable storage for meeting slots. All reads and
// writes go through this interface so the scheduling engine never touches
// the driver directly.
type SlotRepository interface {
	Create(ctx context.Context, slot models.Slot) (*models.Slot, error)
	GetByID(ctx context.Context, slotID string) (*models.Slot, error)
	FindOverlapping(ctx context.Context, start, end time.Time) ([]models.Slot, error)
	ListUnbooked(ctx context.Context, start, end time.Time) ([]models.Slot, error)
	BookIfFree(ctx context.Context, slotID string, meeting models.MeetingRequest) (bool, error)
	DeleteUnbookedEndingBefore(ctx context.Context, cutoff time.Time) (int64, error)
	EnsureIndexes() error
}

type mongoSlotRepo struct {
	coll *mongo.Collection
}

// NewMongoSlotRepo constructs a new MongoDB SlotRepository.
func NewMongoSlotRepo() SlotRepository {
	db := database.MongoClient.Database(config.AppConfig.MongoDB)
	return &mongoSlotRepo{
		coll: db.Collection(config.AppConfig.SlotCollection),
	}
}
