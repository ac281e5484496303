package services

import (
	"context"
	"fmt"

	"github.com/localnerve/archhub/internal/config"
	"github.com/localnerve/archhub/internal/utils"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	statusOK       = "ok"
	statusDisabled = "disabled"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Authorizer   string            `json:"authorizer"`
	Redis        string            `json:"redis"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// Healthy reports whether every enabled dependency answered
func (r *HealthCheckResult) Healthy() bool {
	return r.Status == "healthy"
}

func (r *HealthCheckResult) fail(component, state string, err error) {
	r.Status = "unhealthy"
	r.Details[component+"_error"] = err.Error()

	msg := fmt.Sprintf("%s %s: %v", component, state, err)
	if r.ErrorMessage == "" {
		r.ErrorMessage = msg
	} else {
		r.ErrorMessage += "; " + msg
	}
	log.Warn().Err(err).Str("component", component).Msg("Health check failed")
}

// HealthCheck checks the database and, when configured, the authorizer and
// redis. rdb may be nil.
func HealthCheck(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client) HealthCheckResult {
	result := HealthCheckResult{
		Status:     "healthy",
		Authorizer: statusDisabled,
		Redis:      statusDisabled,
		Details:    make(map[string]string),
	}

	sqlDB, err := db.DB()
	if err != nil {
		result.Database = "error"
		result.fail("database", "connection error", err)
	} else if err := sqlDB.PingContext(ctx); err != nil {
		result.Database = "unreachable"
		result.fail("database", "ping failed", err)
	} else {
		result.Database = statusOK
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	if cfg.AuthEnabled() {
		if err := utils.PingURL(ctx, cfg.AuthzURL, utils.DefaultPingTimeout); err != nil {
			result.Authorizer = "unreachable"
			result.fail("authorizer", "ping failed", err)
		} else {
			result.Authorizer = statusOK
			result.Details["authorizer_url"] = cfg.AuthzURL
		}
	}

	if rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			result.Redis = "unreachable"
			result.fail("redis", "ping failed", err)
		} else {
			result.Redis = statusOK
			result.Details["redis_addr"] = cfg.RedisAddr
		}
	}

	if result.Healthy() {
		log.Debug().Msg("Health check passed")
	}

	return result
}
