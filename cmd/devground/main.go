package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"golang.org/x/sync/errgroup"

	"github.com/charadev96/devground/internal/server"
	"github.com/charadev96/devground/internal/server/config"
	serverdomain "github.com/charadev96/devground/internal/server/domain"
	"github.com/charadev96/devground/internal/server/handler"
	"github.com/charadev96/devground/internal/server/repository"
	"github.com/charadev96/devground/internal/server/service"
	"github.com/charadev96/devground/internal/shared/infra"
	"github.com/charadev96/devground/internal/shared/log"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	logger := log.New("main")
	httpLogger := log.New("http")
	sweepLogger := log.New("sweep")

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	users, err := repository.NewBunUserRepository(ctx, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init user repository")
	}
	challenges, err := repository.NewBunChallengeRepository(ctx, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init challenge repository")
	}
	credentials, err := repository.NewBunCredentialRepository(ctx, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init credential repository")
	}
	sessions, err := repository.NewBunSessionRepository(ctx, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init session repository")
	}
	todos, err := repository.NewBunTodoRepository(ctx, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init todo repository")
	}
	runner := infra.NewBunTransactionRunner(db)

	secret := []byte(cfg.Auth.SessionSecret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			logger.Fatal().Err(err).Msg("failed to generate session secret")
		}
		secret = []byte(hex.EncodeToString(buf))
		logger.Warn().Msg("no session secret configured, sessions will not survive restarts")
	}

	userService := &service.UserService{
		Users:      users,
		Sessions:   sessions,
		TXRunner:   runner,
		SessionTTL: cfg.Auth.SessionTTL.Value(),
	}
	passkeyService := &service.PasskeyService{
		RelyingPartyID:   cfg.RelyingParty.ID,
		RelyingPartyName: cfg.RelyingParty.Name,
		ChallengeTTL:     cfg.Auth.ChallengeTTL.Value(),
		Users:            users,
		Challenges:       challenges,
		Credentials:      credentials,
		TXRunner:         runner,
	}
	todoService := &service.TodoService{
		Todos: todos,
	}

	if err := userService.Seed(ctx, seedUsers(cfg.SeedUsers)); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed users")
	}

	sessionManager := &handler.SessionManager{
		Service: userService,
		Secret:  secret,
		TTL:     cfg.Auth.SessionTTL.Value(),
		Logger:  &httpLogger,
	}
	router := handler.NewRouter(
		&handler.PasskeyHandler{Service: passkeyService, Sessions: sessionManager, Logger: &httpLogger},
		&handler.AuthHandler{Users: userService, Sessions: sessionManager, Logger: &httpLogger},
		&handler.TodoHandler{Service: todoService, Logger: &httpLogger},
		&handler.AdminHandler{Users: userService, Logger: &httpLogger},
		sessionManager,
		&httpLogger,
	)

	sweeper := cron.New()
	_, err = sweeper.AddFunc(cfg.Auth.CleanupSchedule, func() {
		if n, err := passkeyService.CleanupExpiredChallenges(ctx); err != nil {
			sweepLogger.Error().Err(err).Msg("failed to sweep challenges")
		} else if n > 0 {
			sweepLogger.Info().Int64("removed", n).Msg("swept expired challenges")
		}
		if n, err := userService.CleanupExpiredSessions(ctx); err != nil {
			sweepLogger.Error().Err(err).Msg("failed to sweep sessions")
		} else if n > 0 {
			sweepLogger.Info().Int64("removed", n).Msg("swept expired sessions")
		}
	})
	if err != nil {
		logger.Fatal().Err(err).Str("schedule", cfg.Auth.CleanupSchedule).Msg("invalid cleanup schedule")
	}
	sweeper.Start()

	srv := &server.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
		Logger:  &httpLogger,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(ctx)
	})
	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped")
	}
	<-sweeper.Stop().Done()
}

func seedUsers(seeds []config.SeedUser) []service.SeedUser {
	out := make([]service.SeedUser, len(seeds))
	for i, s := range seeds {
		role := serverdomain.RoleUser
		if strings.EqualFold(s.Role, string(serverdomain.RoleAdmin)) {
			role = serverdomain.RoleAdmin
		}
		out[i] = service.SeedUser{
			Username: s.Username,
			Email:    s.Email,
			Password: s.Password,
			Role:     role,
		}
	}
	return out
}
