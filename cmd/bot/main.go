package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gametable/internal/common/clock"
	"gametable/internal/common/uuid"
	"gametable/internal/config"
	"gametable/internal/games"
	"gametable/internal/games/highroll"
	"gametable/internal/games/vote"
	"gametable/internal/handlers/discord"
	"gametable/internal/lock"
	"gametable/internal/logging"
	"gametable/internal/repositories/rewardledger"
	sessionRepo "gametable/internal/repositories/session"
	gameRouter "gametable/internal/router"
	"gametable/internal/scheduler"
	gameService "gametable/internal/services/game"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := logging.Init(cfg.Log)

	if cfg.Bot.Token == "" {
		logger.Fatal().Msg("DISCORD_TOKEN environment variable is required")
	}

	// The reward ledger is the only external store; sessions are in-memory
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to Redis")
	}

	ledgerRepo, err := rewardledger.NewRedis(&rewardledger.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create reward ledger repository")
	}

	systemClock := &clock.DefaultClock{}

	repo, err := sessionRepo.NewMemory(&sessionRepo.Config{
		Clock: systemClock,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create session repository")
	}

	locks, err := lock.New(&lock.Config{
		Clock: systemClock,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create lock manager")
	}

	registry := games.NewRegistry()
	if err := registry.Register(highroll.New(nil)); err != nil {
		logger.Fatal().Err(err).Msg("failed to register highroll")
	}
	if err := registry.Register(vote.New()); err != nil {
		logger.Fatal().Err(err).Msg("failed to register vote")
	}

	orchestrator := scheduler.New(nil)

	svc, err := gameService.New(&gameService.Config{
		SessionRepo:   repo,
		RewardLedger:  ledgerRepo,
		Locks:         locks,
		Registry:      registry,
		Scheduler:     orchestrator,
		Clock:         systemClock,
		UUIDGenerator: uuid.New(),
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create game service")
	}

	actionRouter, err := gameRouter.New(&gameRouter.Config{
		SessionRepo: repo,
		Locks:       locks,
		Registry:    registry,
		Logger:      logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create action router")
	}

	bot, err := discord.New(&discord.Config{
		Token:         cfg.Bot.Token,
		ApplicationID: cfg.Bot.ApplicationID,
		GuildID:       cfg.Bot.GuildID,
		GameService:   svc,
		Router:        actionRouter,
		Registry:      registry,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create Discord bot")
	}

	// The bot re-renders session messages when countdown timers move
	// sessions on their own
	svc.SetObserver(bot)

	if err := bot.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start Discord bot")
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.Info().Msg("shutting down")

	svc.Close()
	if err := bot.Stop(); err != nil {
		logger.Error().Err(err).Msg("error stopping bot")
	}
	repo.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("error closing redis client")
	}
}
