// Command seeder creates or promotes the back-office administrator account.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ecomitechltd/ZINEB/internal/app"
	"github.com/ecomitechltd/ZINEB/internal/auth"
	"github.com/ecomitechltd/ZINEB/internal/config"
	dbgen "github.com/ecomitechltd/ZINEB/internal/db/gen"
	"github.com/ecomitechltd/ZINEB/internal/db/pgconv"
	"github.com/ecomitechltd/ZINEB/internal/obs"
)

const (
	defaultAdminEmail    = "admin@esimfly.me"
	defaultAdminPassword = "Admin123!"
	adminReferralCode    = "ADMIN2024"
	adminCredits         = 10000
)

func main() {
	email := flag.String("email", defaultAdminEmail, "administrator e-mail")
	name := flag.String("name", "Admin", "administrator display name")
	printToken := flag.Bool("token", false, "print a signed session token for the administrator")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("component", "seeder").Logger()

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = defaultAdminPassword
		logger.Warn().Msg("ADMIN_PASSWORD not set, using the default password")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := app.NewPool(ctx, cfg, "esimfly-seeder")
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise database")
	}
	defer pool.Close()

	hash, err := app.HashPassword(password)
	if err != nil {
		logger.Fatal().Err(err).Msg("hash password")
	}
	admin, err := dbgen.New(pool).UpsertAdminUser(ctx, dbgen.UpsertAdminUserParams{
		Email:        *email,
		Name:         pgconv.Text(*name),
		PasswordHash: pgconv.Text(hash),
		Credits:      adminCredits,
		ReferralCode: pgconv.Text(adminReferralCode),
	})
	if err != nil {
		logger.Fatal().Err(err).Str("email", *email).Msg("upsert admin")
	}
	adminID := pgconv.UUIDString(admin.ID)
	logger.Info().Str("id", adminID).Str("email", admin.Email).Str("role", admin.Role).Msg("admin ready")

	if !*printToken {
		return
	}
	tokens, err := auth.NewTokens(auth.TokensConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise tokens")
	}
	token, expires, err := tokens.Issue(adminID)
	if err != nil {
		logger.Fatal().Err(err).Msg("issue token")
	}
	logger.Info().Time("expires", expires).Msg("session token issued")
	fmt.Println(token)
}
