package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/badwolfdev/queuebot/internal/handlers/discord"
	"github.com/badwolfdev/queuebot/internal/rating"
	"github.com/badwolfdev/queuebot/internal/repositories/friendcode"
	"github.com/badwolfdev/queuebot/internal/repositories/snapshot"
	"github.com/badwolfdev/queuebot/internal/services/matchmaker"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})

	// Test Redis connection
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()

	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Initialize repositories
	snapshotRepo, err := snapshot.NewRedis(&snapshot.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		log.Fatalf("Failed to create snapshot repository: %v", err)
	}

	fcRepo, err := friendcode.NewRedis(&friendcode.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		log.Fatalf("Failed to create friend code repository: %v", err)
	}

	// Initialize the ladder rating client
	ratingClient, err := rating.New(&rating.Config{
		BaseURL: getEnv("LADDER_API_URL", ""),
	})
	if err != nil {
		log.Fatalf("Failed to create rating client: %v", err)
	}

	// Get Discord token from environment
	discordToken := getEnv("DISCORD_TOKEN", "")
	if discordToken == "" {
		log.Fatal("DISCORD_TOKEN environment variable is required")
	}

	session, err := discordgo.New("Bot " + discordToken)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}

	gateway, err := discord.NewGateway(&discord.GatewayConfig{
		Session: session,
	})
	if err != nil {
		log.Fatalf("Failed to create Discord gateway: %v", err)
	}

	// Initialize the matchmaker service
	svc, err := matchmaker.NewService(&matchmaker.Config{}, gateway, ratingClient, snapshotRepo, fcRepo, nil, nil, nil)
	if err != nil {
		log.Fatalf("Failed to create matchmaker service: %v", err)
	}

	// Initialize Discord bot
	bot, err := discord.New(&discord.Config{
		Session:       session,
		ApplicationID: getEnv("APPLICATION_ID", ""),
		GuildID:       getEnv("GUILD_ID", ""),
		Matchmaker:    svc,
		FriendCodes:   fcRepo,
	})
	if err != nil {
		log.Fatalf("Failed to create Discord bot: %v", err)
	}

	// Start the control loop before anything can dispatch into it
	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()
	go func() {
		if err := svc.Run(runCtx); err != nil && runCtx.Err() == nil {
			log.Printf("Matchmaker loop stopped: %v", err)
		}
	}()

	// Start the bot
	if err := bot.Start(); err != nil {
		log.Fatalf("Failed to start Discord bot: %v", err)
	}

	// Resume from the last snapshot, if one exists
	if err := svc.Restore(runCtx); err != nil {
		log.Printf("Failed to restore snapshot: %v", err)
	}

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	// Persist state before going down
	saveCtx, cancelSave := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSave()
	if err := svc.Save(saveCtx); err != nil {
		log.Printf("Failed to save snapshot on shutdown: %v", err)
	}

	if err := bot.Stop(); err != nil {
		log.Printf("Error stopping bot: %v", err)
	}
	cancelRun()

	log.Println("Bot has been shut down")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
