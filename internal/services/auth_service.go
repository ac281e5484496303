package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/localnerve/archhub/internal/config"
	"github.com/localnerve/archhub/internal/utils"
	"github.com/localnerve/authorizer-go"
	"github.com/rs/zerolog/log"
)

// SystemActor is recorded as the author of changes when auth is disabled
const SystemActor = "system"

var ErrSessionInvalid = errors.New("session is not valid")

var (
	authClient *authorizer.AuthorizerClient
	authMu     sync.Mutex
)

// Actor is the authenticated user behind a request
type Actor struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Roles []string `json:"roles,omitempty"`
}

// Name is the value recorded in created_by and updated_by
func (a *Actor) Name() string {
	if a == nil {
		return SystemActor
	}
	if a.Email != "" {
		return a.Email
	}
	if a.ID != "" {
		return a.ID
	}
	return SystemActor
}

func client() *authorizer.AuthorizerClient {
	authMu.Lock()
	defer authMu.Unlock()
	return authClient
}

// IsAuthorizerInitialized reports whether InitAuthorizer has succeeded
func IsAuthorizerInitialized() bool {
	return client() != nil
}

// InitAuthorizer creates the authorizer client on the first authenticated
// request, which supplies the redirect url. A failure is retried on the next call.
func InitAuthorizer(cfg *config.Config, requestProtocol, requestHost string) error {
	authMu.Lock()
	defer authMu.Unlock()

	if authClient != nil {
		return nil
	}

	if err := utils.PingURL(context.Background(), cfg.AuthzURL, utils.DefaultPingTimeout); err != nil {
		return fmt.Errorf("authorizer ping failed: %w", err)
	}

	redirectURL := fmt.Sprintf("%s://%s", requestProtocol, requestHost)
	log.Info().
		Str("authorizer_url", cfg.AuthzURL).
		Str("client_id", cfg.AuthzClientID).
		Str("redirect_url", redirectURL).
		Msg("Initializing authorizer")

	c, err := authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, redirectURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create authorizer client: %w", err)
	}
	authClient = c
	return nil
}

// ValidateSession checks the session cookie against the required roles
func ValidateSession(cookie string, roles []string) (*Actor, error) {
	c := client()
	if c == nil {
		return nil, fmt.Errorf("authorizer client not initialized")
	}

	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}

	res, err := c.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid {
		return nil, ErrSessionInvalid
	}

	return actorFrom(res.User)
}

// actorFrom reads the id and email from the authorizer user
func actorFrom(user any) (*Actor, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to read session user: %w", err)
	}

	var actor Actor
	if err := json.Unmarshal(raw, &actor); err != nil {
		return nil, fmt.Errorf("failed to read session user: %w", err)
	}
	return &actor, nil
}
