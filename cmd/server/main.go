package main // Entry point package

import (
    "context" // timeouts for background housekeeping
    "log"     // Logging library
    "time"    // sweep interval

    "github.com/joho/godotenv"    // loads .env files into the environment
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/config"     // Internal config loader
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/database"   // MySQL connection
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/handler"    // HTTP handlers
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/queue"      // background email consumer
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/repository" // DB repositories
    "github.com/n20-backend/Muhammadaziz-Ekubov/internal/router"     // Internal router setup
)

func main() {
	// Load .env if present; real deployments set variables directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	// Redis backs the auth rate limiter; nil means rate limiting is
	// disabled and auth endpoints run unthrottled.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, rate limiting disabled")
	}
	rlCfg := config.LoadRateLimitConfig()

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	otps := repository.NewOTPRepo(db)
	chats := repository.NewChatRepo(db)
	messages := repository.NewMessageRepo(db)
	calls := repository.NewCallRepo(db)
	profiles := repository.NewProfileRepo(db)

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens, otps, profiles)
	chatH := handler.NewChatHandler(chats, users)
	msgH := handler.NewMessageHandler(messages, chats)
	callH := handler.NewCallHandler(calls, chats)
	profH := handler.NewProfileHandler(profiles)
	userH := handler.NewUserHandler(users, tokens)

	// The email consumer drains the email.otp queue in the background and
	// keeps reconnecting on broker failures.
	go func() {
		if err := queue.StartEmailConsumer(); err != nil {
			log.Printf("email consumer stopped: %v", err)
		}
	}()

	// Housekeeping: dead passcodes are rejected at read time anyway, this
	// just keeps the table small.
	go func() {
		for range time.Tick(10 * time.Minute) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if n, err := otps.DeleteExpired(ctx, time.Now().UTC()); err != nil {
				log.Printf("otp sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("otp sweep removed %d expired codes", n)
			}
			cancel()
		}
	}()

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.AccessSecret, rlCfg, rdb)
	router.RegisterResources(e, chatH, msgH, callH, profH, userH, cfg.AccessSecret, users)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
