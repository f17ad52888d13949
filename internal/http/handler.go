package http

import (
	"log/slog"
	"strings"

	"idp/internal/keys"
	"idp/internal/providers"
	"idp/internal/services/authcode"
	"idp/internal/services/authorize"
	"idp/internal/services/identity"
	"idp/internal/services/session"
	"idp/internal/services/token"
)

const sessionCookieName = "session_token"
const stateCookieName = "social_state"

// Handler carries the services behind every HTTP endpoint. All state is
// read-only after construction.
type Handler struct {
	log       *slog.Logger
	validator *authorize.Validator
	codes     *authcode.Manager
	sessions  *session.Service
	identity  *identity.Resolver
	tokens    *token.Service
	keys      *keys.Provider
	providers providers.Registry
	baseURL   string
	secure    bool
}

// New returns a new instance of the HTTP Handler
func New(
	log *slog.Logger,
	validator *authorize.Validator,
	codes *authcode.Manager,
	sessions *session.Service,
	identity *identity.Resolver,
	tokens *token.Service,
	keyProvider *keys.Provider,
	registry providers.Registry,
	baseURL string,
) *Handler {
	return &Handler{
		log:       log,
		validator: validator,
		codes:     codes,
		sessions:  sessions,
		identity:  identity,
		tokens:    tokens,
		keys:      keyProvider,
		providers: registry,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		secure:    strings.HasPrefix(baseURL, "https://"),
	}
}
