package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"

	config "github.com/creatorlink/socialsync/configs"
	"github.com/creatorlink/socialsync/internal/api/handlers"
	"github.com/creatorlink/socialsync/internal/api/middleware"
	job "github.com/creatorlink/socialsync/internal/jobs"
	"github.com/creatorlink/socialsync/internal/models"
	"github.com/creatorlink/socialsync/internal/queue"
	"github.com/creatorlink/socialsync/internal/ratelimit"
	"github.com/creatorlink/socialsync/internal/repository"
	"github.com/creatorlink/socialsync/internal/service"
	"github.com/creatorlink/socialsync/internal/transfer"
	"github.com/creatorlink/socialsync/internal/vault"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer rdb.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	snapshotRepo := repository.NewFollowerSnapshotRepository(db)
	syncJobRepo := repository.NewSyncJobRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	tokenVault := vault.New(cfg.EncryptionKey)
	limiter := ratelimit.New(ratelimit.NewRedisCache(rdb), time.Duration(cfg.RateLimitCooldown)*time.Second)

	profileService := service.NewProfileService(socialAccountRepo, snapshotRepo, profileRepo)
	syncService := service.NewSyncService(*cfg, userRepo, socialAccountRepo, snapshotRepo, syncJobRepo, profileService, limiter, tokenVault, nil)
	reportService := service.NewReportService(*cfg, socialAccountRepo, syncService)
	webhookService := service.NewWebhookService(socialAccountRepo, snapshotRepo, webhookEventRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	webhook := handlers.NewWebhookHandler(webhookService)
	app.Post("/webhooks/:platform", webhook.ReceiveEvent)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	sync := handlers.NewSyncHandler(syncService, client)
	api.Post("/sync/trigger", sync.TriggerSync)
	api.Get("/sync/jobs", sync.GetJobStatus)
	api.Get("/sync/statistics", sync.GetStatistics)
	api.Get("/sync/history", sync.GetAccountHistory)

	account := handlers.NewAccountHandler(socialAccountRepo, syncService, client)
	api.Get("/accounts", account.ListSocialAccounts)
	api.Post("/accounts/remove", account.RemoveSocialAccount)
	api.Post("/accounts/username", account.UpdateUsername)

	profile := handlers.NewProfileHandler(profileService)
	api.Get("/profile", profile.GetProfile)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(*cfg, socialAccountRepo, syncService)
	cleanupJob := job.NewCleanupJob(*cfg, syncService)
	reportJob := job.NewReportJob(reportService)
	webhookSweepJob := job.NewWebhookSweepJob(webhookService)

	//queue
	queueW := queue.NewQueue(syncService)

	c := cron.New()
	c.AddFunc("@every 01h00m00s", func() { enqueueFullSync(syncService, client) })
	c.AddFunc("@every 06h00m00s", refreshTokenJob.RefreshTokens)
	c.AddFunc("@every 01h00m00s", cleanupJob.FailStaleJobs)
	c.AddFunc("@every 00h15m00s", webhookSweepJob.ProcessPending)
	c.AddFunc("@daily", cleanupJob.CleanupOldData)
	c.AddFunc("@daily", reportJob.GenerateDailyReport)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency:    10,
			RetryDelayFunc: queue.RetryDelay,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeSyncAll, queueW.HandleSyncJobTask)
		mux.HandleFunc(queue.TaskTypeSyncUser, queueW.HandleSyncJobTask)
		mux.HandleFunc(queue.TaskTypeSyncPlatform, queueW.HandleSyncJobTask)
		mux.HandleFunc(queue.TaskTypeSyncAccount, queueW.HandleSyncJobTask)
		mux.HandleFunc(queue.TaskTypeCleanup, queueW.HandleCleanupTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func enqueueFullSync(ss service.SyncService, client *asynq.Client) {
	jobRow, err := ss.CreateJob(context.Background(), transfer.SyncRequest{JobType: models.JobTypeFullSync})
	if err != nil {
		log.Printf("Error creating full sync job: %v", err)
		return
	}

	if err := queue.EnqueueSyncJob(client, queue.TaskTypeSyncAll, queue.SyncJobPayload{JobID: jobRow.JobID}); err != nil {
		log.Printf("Error enqueueing full sync job: %v", err)
	}
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
