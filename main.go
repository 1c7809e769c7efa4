// File: slotify/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotify/config"
	"slotify/cron"
	"slotify/database"
	slotRepo "slotify/database/repository/slot"
	"slotify/handlers"
	"slotify/mcptools"
	"slotify/middleware"
	"slotify/routes"
	"slotify/services/scheduling"
	"slotify/services/session"
	"slotify/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	repo := slotRepo.NewMongoSlotRepo()
	if err := repo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure slot indexes: %v", err)
	}

	// services.
	var metrics *utils.Metrics
	if config.AppConfig.MetricsEnabled {
		metrics = utils.DefaultMetrics()
	}
	schedulingEngineInstance := &scheduling.DefaultSchedulingEngine{
		Repo:    repo,
		Metrics: metrics,
	}

	sessionTTL := time.Duration(config.AppConfig.SessionTTLMinutes) * time.Minute
	sessionStore := session.NewRedisStore(utils.GetCacheClient(), sessionTTL)

	schedulingHandler := handlers.NewSchedulingHandler(schedulingEngineInstance, sessionStore)
	sessionHandler := handlers.NewSessionHandler(sessionStore)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		// Scheduling endpoints.
		ScheduleMeetingHandler:  schedulingHandler.ScheduleMeetingHandler,
		GetFreeSlotsHandler:     schedulingHandler.GetFreeSlotsHandler,
		AddPotentialSlotHandler: schedulingHandler.AddPotentialSlotHandler,
		GetSlotHandler:          schedulingHandler.GetSlotHandler,

		// Session endpoints.
		GetSessionHandler: sessionHandler.GetSessionHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the MCP server the external agent connects to.
	mcpSrv, err := mcptools.NewServer(schedulingEngineInstance, sessionStore)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to build MCP server: %v", err)
	}
	mcpHTTPSrv := mcptools.NewSSEHTTPServer(mcpSrv, "0.0.0.0:"+config.AppConfig.MCPPort)
	logger.Sugar().Infof("Starting MCP SSE server on %s...", mcpHTTPSrv.Addr)
	go func() {
		if err := mcpHTTPSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: MCP server failed to start: %v", err)
		}
	}()

	// Background pruning of stale offered slots.
	if config.AppConfig.CleanupEnabled {
		cron.InitPruneWorker(repo)
	}

	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}
	if err := mcpHTTPSrv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: MCP server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
