package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"slotify/config"
	slotRepo "slotify/database/repository/slot"
	"slotify/models"
	"slotify/services/tasks"
	"slotify/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitPruneWorker runs the async worker in background. Each prune pass
// deletes offered (unbooked) slots that ended more than the configured
// retention ago, then schedules the next pass; booked slots are never
// touched, they are the durable record of committed meetings.
func InitPruneWorker(repo slotRepo.SlotRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	client := asynq.NewClient(redisOpts)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSlotPrune, handleSlotPruneTask(repo, client))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Kick off the prune chain; each completed pass enqueues the next one.
	if err := seedPruneChain(client); err != nil {
		log.Printf("[PruneWorker] ❌ Failed to enqueue initial prune task: %v", err)
	}

	// Start async worker with retry logic
	go func() {
		log.Println("[PruneWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[PruneWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[PruneWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// pruneEnqueuer is the part of asynq.Client the prune handler needs to
// schedule the follow-up pass.
type pruneEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func handleSlotPruneTask(repo slotRepo.SlotRepository, client pruneEnqueuer) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.SlotPrunePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[PruneHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		retention := p.RetentionDays
		if retention <= 0 {
			retention = config.AppConfig.CleanupRetentionDays
		}
		cutoff := time.Now().UTC().AddDate(0, 0, -retention)

		deleted, err := repo.DeleteUnbookedEndingBefore(ctx, cutoff)
		if err != nil {
			log.Printf("[PruneHandler] ❌ Prune pass failed: %v", err)
			return err
		}
		log.Printf("[PruneHandler] 🧹 Removed %d stale unbooked slot(s) ending before %s", deleted, utils.FormatUTCTime(cutoff))

		if err := enqueueNextPrune(client, time.Now().Add(pruneInterval())); err != nil {
			log.Printf("[PruneHandler] ❌ Failed to schedule next prune pass: %v", err)
			return err
		}
		return nil
	}
}

// seedPruneChain enqueues the first pass for immediate processing, so a
// (re)started worker prunes right away instead of waiting out an interval.
// Every later pass is chained by the handler at the configured cadence.
func seedPruneChain(client pruneEnqueuer) error {
	return enqueueNextPrune(client, time.Now())
}

func enqueueNextPrune(client pruneEnqueuer, fireAt time.Time) error {
	payload := models.SlotPrunePayload{RetentionDays: config.AppConfig.CleanupRetentionDays}
	task, opts, err := tasks.NewSlotPruneTask(payload, fireAt)
	if err != nil {
		return err
	}
	_, err = client.Enqueue(task, opts...)
	return err
}

func pruneInterval() time.Duration {
	minutes := config.AppConfig.CleanupIntervalMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return time.Duration(minutes) * time.Minute
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[PruneWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
