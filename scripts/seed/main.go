package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"slotify/config"
	"slotify/database"
	"slotify/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

func main() {
	// Initialize the database connection.
	config.LoadConfig()
	database.InitDB()
	coll := database.Database().Collection(config.AppConfig.SlotCollection)

	// Clear existing slots.
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatalf("Failed to clear slots collection: %v", err)
	}

	// Simulation parameters: offer 30-minute potential slots over business
	// hours (UTC) for the next 7 days.
	const (
		dayStartHour = 9
		dayEndHour   = 17
		slotMinutes  = 30
	)

	now := time.Now().UTC()
	var slots []interface{}
	for dayOffset := 0; dayOffset < 7; dayOffset++ {
		day := now.AddDate(0, 0, dayOffset)
		dayStart := time.Date(day.Year(), day.Month(), day.Day(), dayStartHour, 0, 0, 0, time.UTC)
		dayEnd := time.Date(day.Year(), day.Month(), day.Day(), dayEndHour, 0, 0, 0, time.UTC)

		for start := dayStart; start.Before(dayEnd); start = start.Add(slotMinutes * time.Minute) {
			end := start.Add(slotMinutes * time.Minute)
			// Skip windows that have already passed today.
			if end.Before(now) {
				continue
			}
			slots = append(slots, models.Slot{
				ID:        uuid.New().String(),
				Title:     "Open consultation window",
				StartTime: start,
				EndTime:   end,
				Booked:    false,
				CreatedAt: now,
			})
		}
	}

	// Insert all potential slots into MongoDB.
	insertResult, err := coll.InsertMany(ctx, slots)
	if err != nil {
		log.Fatalf("Failed to insert slots: %v", err)
	}
	fmt.Printf("Inserted %d potential slots\n", len(insertResult.InsertedIDs))
}
