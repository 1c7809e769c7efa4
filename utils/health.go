package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	healthCheckInterval = 60 * time.Second
	healthProbeTimeout  = 5 * time.Second
)

// HealthStatus is the most recent probe of the service's backing stores: the
// slot store (Mongo) and the session cache / task queue broker (Redis).
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Redis     bool      `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns the latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

// StartHealthMonitor probes the backing stores once at startup and then on an
// interval, keeping an in-memory snapshot for the health endpoint.
func StartHealthMonitor(redisClient *redis.Client, mongoClient *mongo.Client) {
	go func() {
		probe(redisClient, mongoClient)

		ticker := time.NewTicker(healthCheckInterval)
		defer ticker.Stop()
		for range ticker.C {
			probe(redisClient, mongoClient)
		}
	}()
}

func probe(redisClient *redis.Client, mongoClient *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), healthProbeTimeout)
	defer cancel()

	redisHealthy := redisClient.Ping(ctx).Err() == nil
	mongoHealthy := mongoClient.Ping(ctx, nil) == nil

	healthMu.Lock()
	currentHealth = HealthStatus{
		Mongo:     mongoHealthy,
		Redis:     redisHealthy,
		CheckedAt: time.Now().UTC(),
	}
	healthMu.Unlock()
}
