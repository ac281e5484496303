// main.go
//
// Architecture Hub application catalogue service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of archhub.
// archhub is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// archhub is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with archhub.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/localnerve/archhub/internal/config"
	"github.com/localnerve/archhub/internal/database"
	"github.com/localnerve/archhub/internal/logging"
	"github.com/localnerve/archhub/internal/services"
	"github.com/redis/go-redis/v9"
)

// healthcheck prints the service health report as json and exits non zero
// when any dependency is down. It is the container HEALTHCHECK command.
func main() {
	timeout := flag.Duration("timeout", 5*time.Second, "overall check deadline")
	flag.Parse()

	os.Exit(run(*timeout))
}

func run(timeout time.Duration) int {
	logger := logging.Setup("error", false)

	cfg, err := config.Load()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return 2
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Error().Err(err).Str("db", cfg.DBType).Msg("Database connection failed")
		return 1
	}
	defer database.Close(db)

	var rdb *redis.Client
	if cfg.DraftStore == "redis" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	report := services.HealthCheck(ctx, cfg, db, rdb)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		logger.Error().Err(err).Msg("Failed to write health report")
		return 2
	}

	if !report.Healthy() {
		return 1
	}
	return 0
}
