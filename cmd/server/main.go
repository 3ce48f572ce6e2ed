package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"healthmate/recovery-app/internal/api"
	"healthmate/recovery-app/internal/config"
	"healthmate/recovery-app/internal/generation"
	"healthmate/recovery-app/internal/repository/mongo"
	"healthmate/recovery-app/internal/service"
	"healthmate/recovery-app/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Recovery App Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() { // Run index creation in the background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureSymptomIndexes(ctx, appDB.Collection("symptoms"))
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("exercises"))
		mongo.EnsureRecoveryPlanIndexes(ctx, appDB.Collection("recovery_plans"))
		mongo.EnsureAttachmentIndexes(ctx, appDB.Collection("attachments"))
		mongo.EnsureChatIndexes(ctx, appDB.Collection("chat_messages"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Generation Collaborator ---
	log.Println("Initializing text generation client...")
	generator, err := generation.NewGeminiGenerator(context.Background(), cfg.Generation.APIKey, cfg.Generation.Model)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize generation client: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	symptomRepo := mongo.NewMongoSymptomRepository(appDB)
	exerciseRepo := mongo.NewMongoExerciseRepository(appDB)
	planRepo := mongo.NewMongoRecoveryPlanRepository(appDB)
	attachmentRepo := mongo.NewMongoAttachmentRepository(appDB)
	chatRepo := mongo.NewMongoChatRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	symptomService := service.NewSymptomService(symptomRepo, attachmentRepo, fileStorage)
	matcher := service.NewSymptomMatcher(symptomRepo)
	registry := service.NewExerciseRegistry(exerciseRepo, matcher)
	planService := service.NewPlanService(planRepo, exerciseRepo)
	recoveryService := service.NewRecoveryService(generator, registry, planService, planRepo)
	chatService := service.NewChatService(chatRepo, generator)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, symptomService, recoveryService, chatService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second, // generation calls can be slow
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give in-flight requests 5 seconds to finish
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
