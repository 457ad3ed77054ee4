package main

import (
	"context"
	"database/sql"
	"flag"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	server "github.com/charadev96/devground/internal/server/domain"
	"github.com/charadev96/devground/internal/server/repository"
	"github.com/charadev96/devground/internal/server/service"
	"github.com/charadev96/devground/internal/shared/infra"
	"github.com/charadev96/devground/internal/shared/log"
)

func main() {
	dbPath := flag.String("db", "devground.db", "path to the sqlite database")
	flag.Parse()

	logger := log.New("ctl")
	ctx := context.Background()

	username, err := (&promptui.Prompt{
		Label: "Username",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return promptui.ErrAbort
			}
			return nil
		},
	}).Run()
	if err != nil {
		logger.Fatal().Err(err).Msg("prompt aborted")
	}

	email, err := (&promptui.Prompt{Label: "Email"}).Run()
	if err != nil {
		logger.Fatal().Err(err).Msg("prompt aborted")
	}

	password, err := (&promptui.Prompt{Label: "Password", Mask: '*'}).Run()
	if err != nil {
		logger.Fatal().Err(err).Msg("prompt aborted")
	}

	_, roleStr, err := (&promptui.Select{
		Label: "Role",
		Items: []string{string(server.RoleUser), string(server.RoleAdmin)},
	}).Run()
	if err != nil {
		logger.Fatal().Err(err).Msg("prompt aborted")
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, *dbPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	users, err := repository.NewBunUserRepository(ctx, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init user repository")
	}

	svc := &service.UserService{
		Users:    users,
		TXRunner: infra.NewBunTransactionRunner(db),
	}
	usr, err := svc.CreateUser(ctx, username, email, password, server.Role(roleStr))
	if err != nil {
		logger.Fatal().Err(err).Str("username", username).Msg("failed to create user")
	}

	logger.Info().
		Str("id", usr.ID.String()).
		Str("username", usr.Username).
		Str("role", string(usr.Role)).
		Msg("created user")
}
