package main

import (
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
	"github.com/robfig/cron"

	config "github.com/crosspilot/crosspilot/configs"
	"github.com/crosspilot/crosspilot/internal/api/handlers"
	"github.com/crosspilot/crosspilot/internal/api/middleware"
	job "github.com/crosspilot/crosspilot/internal/jobs"
	"github.com/crosspilot/crosspilot/internal/platform"
	"github.com/crosspilot/crosspilot/internal/poller"
	"github.com/crosspilot/crosspilot/internal/queue"
	"github.com/crosspilot/crosspilot/internal/repository"
	"github.com/crosspilot/crosspilot/internal/scheduler"
	"github.com/crosspilot/crosspilot/internal/service"
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

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
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

	postRepo := repository.NewPostRepository(db)
	postPlatformRepo := repository.NewPostPlatformRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)

	registry := platform.NewRegistry(
		platform.NewFacebookAdapter(*cfg),
		platform.NewInstagramAdapter(*cfg),
		platform.NewXAdapter(*cfg),
		platform.NewBlueskyAdapter(*cfg),
		platform.NewThreadsAdapter(*cfg),
		platform.NewTikTokAdapter(*cfg),
		platform.NewLinkedInAdapter(*cfg),
	)

	tokenManager := service.NewTokenManager(*cfg, registry, socialAccountRepo)
	postService := service.NewPostService(service.NewTxBeginner(db), postRepo, postPlatformRepo, socialAccountRepo)
	publishService := service.NewPublishService(*cfg, registry, postRepo, postPlatformRepo, socialAccountRepo, tokenManager)
	mediaService := service.NewMediaService(*cfg)
	smartScheduler := scheduler.NewSmartScheduler()

	duePoller := poller.New(time.Duration(cfg.PollIntervalSeconds)*time.Second, postService, publishService)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	post := handlers.NewPostHandler(postService, publishService, client)
	api.Post("/posts/create", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Get("/posts/:id", post.GetPost)
	api.Put("/posts/:id", post.UpdatePost)
	api.Delete("/posts/:id", post.RemovePost)
	api.Post("/posts/:id/publish", post.PublishPost)
	api.Post("/posts/:id/retry", post.RetryPost)

	sched := handlers.NewSchedulerHandler(smartScheduler, duePoller)
	api.Post("/scheduler/suggestions", sched.Suggestions)
	api.Post("/scheduler/optimal", sched.OptimalTime)
	api.Get("/scheduler/poller", sched.PollerStatus)
	api.Post("/scheduler/poller/start", sched.StartPoller)
	api.Post("/scheduler/poller/stop", sched.StopPoller)
	api.Post("/scheduler/poller/check", sched.CheckNow)

	account := handlers.NewAccountHandler(socialAccountRepo)
	api.Get("/accounts", account.ListAccounts)
	api.Delete("/accounts/:id", account.DisconnectAccount)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media/upload", media.UploadMedia)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(socialAccountRepo, tokenManager)
	engagementJob := job.NewEngagementSyncJob(*cfg, registry, postPlatformRepo, socialAccountRepo)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.AddFunc("@every 00h30m00s", engagementJob.SyncEngagement)
	c.Start()

	duePoller.Start()

	// queue
	queueW := queue.NewQueue(publishService)

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypePublishPost, queueW.HandlePublishPostTask)

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

	gracefulShutdown(app, db, duePoller, c)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, p *poller.Poller, c *cron.Cron) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	p.Stop()
	c.Stop()

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
