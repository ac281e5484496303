package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/archhub/internal/config"
	"github.com/localnerve/archhub/internal/database"
	"github.com/localnerve/archhub/internal/logging"
	"github.com/localnerve/archhub/internal/testhelpers"
	"github.com/rs/zerolog"
)

const usage = `Start the archhub backing services (database, authorizer, redis) and keep
them running until interrupted. A service starts only when its *_IMAGE
variable is set.

Usage:

  testcontainers [-f ENV_FILE_PATH] [-seed]

example
  testcontainers -f ./containers.env -seed
`

func main() {
	envFilename := flag.String("f", "", "path to the .env file")
	seed := flag.Bool("seed", false, "migrate and load the catalogue fixtures once the database is up")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := logging.Setup("info", true)

	if *envFilename != "" {
		if err := godotenv.Load(*envFilename); err != nil {
			logger.Fatal().Err(err).Str("file", *envFilename).Msg("Failed to load environment file")
		}
		logger.Info().Str("file", *envFilename).Msg("Loaded environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	opts := testhelpers.ContainerOptions{
		Database:   os.Getenv("DB_IMAGE") != "",
		Authorizer: os.Getenv("AUTHZ_IMAGE") != "",
		Redis:      os.Getenv("REDIS_IMAGE") != "",
	}
	tc, err := testhelpers.CreateTestContainers(nil, opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create test containers")
	}
	defer tc.Terminate(nil)

	logger.Info().
		Str("db", tc.DBHost+":"+tc.DBPort).
		Str("authorizer", tc.AuthzURL).
		Str("redis", tc.RedisAddr).
		Msg("Containers ready, interrupt to stop")

	if *seed && opts.Database {
		if err := seedCatalogue(tc, logger); err != nil {
			logger.Error().Err(err).Msg("Seeding failed")
		}
	}

	<-ctx.Done()
	logger.Info().Msg("Terminating test containers")
}

func seedCatalogue(tc *testhelpers.TestContainers, logger *zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.DBHost, cfg.DBPort = tc.DBHost, tc.DBPort

	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return err
	}
	fx, err := database.LoadFixtures()
	if err != nil {
		return err
	}
	if err := database.Seed(db, fx); err != nil {
		return err
	}
	logger.Info().Int("applications", len(fx.Applications)).Msg("Catalogue seeded")
	return nil
}
