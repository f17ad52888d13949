package app

import (
	"context"
	"log/slog"

	"idp/internal/app/httpapp"
	"idp/internal/config"
	httptransport "idp/internal/http"
	"idp/internal/keys"
	"idp/internal/lib/jwt"
	"idp/internal/providers"
	"idp/internal/providers/facebook"
	"idp/internal/providers/google"
	"idp/internal/providers/line"
	"idp/internal/services/authcode"
	"idp/internal/services/authorize"
	"idp/internal/services/clientauth"
	"idp/internal/services/identity"
	"idp/internal/services/session"
	"idp/internal/services/token"
	"idp/internal/storage/postgres"
	"idp/internal/storage/redis"
	"idp/internal/storage/repositories"
	"idp/internal/storage/repositories/cached"
)

// App wires the whole server together: storage, cache, key material,
// services and the HTTP transport.
type App struct {
	HTTPSrv *httpapp.App
	storage *postgres.Storage
}

func New(log *slog.Logger, cfg *config.Config) *App {
	ctx := context.Background()

	storage, err := postgres.New(ctx, cfg.StoragePath)
	if err != nil {
		panic(err)
	}
	cache, err := redis.NewCache(&cfg.Redis, cfg.UseCache)
	if err != nil {
		panic(err)
	}

	keyProvider, err := loadKeys(ctx, cfg.Keys)
	if err != nil {
		panic(err)
	}
	signer := jwt.NewSigner(keyProvider, cfg.BaseURL)

	clientRepo := repositories.NewClientRepository(storage)
	userRepo := repositories.NewUserRepository(storage)
	identityRepo := repositories.NewSocialIdentityRepository(storage)
	sessionRepo := cached.NewSessionRepository(repositories.NewSessionRepository(storage), cache)
	codeRepo := repositories.NewAuthCodeRepository(storage)
	accessTokenRepo := repositories.NewAccessTokenRepository(storage)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(storage)

	validator := authorize.New(log, clientRepo)
	authenticator := clientauth.New(log, clientRepo)
	codeManager := authcode.New(log, codeRepo, cfg.AuthorizationCodeTTL)
	identityResolver := identity.New(log, userRepo, identityRepo)
	sessionService := session.New(log, sessionRepo, cfg.SessionTTL)
	tokenService := token.New(
		log,
		authenticator,
		codeManager,
		userRepo,
		accessTokenRepo,
		refreshTokenRepo,
		signer,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
		cfg.IDTokenTTL,
	)

	handler := httptransport.New(
		log,
		validator,
		codeManager,
		sessionService,
		identityResolver,
		tokenService,
		keyProvider,
		buildProviders(cfg.Providers),
		cfg.BaseURL,
	)

	httpApp := httpapp.New(log, handler.Routes(), cfg.HTTP.Port, cfg.HTTP.Timeout)

	return &App{
		HTTPSrv: httpApp,
		storage: storage,
	}
}

// Stop shuts down the transport and releases the storage pool
func (a *App) Stop() {
	a.HTTPSrv.Stop()
	a.storage.CloseStorage()
}

// loadKeys dispatches on the configured key source
func loadKeys(ctx context.Context, cfg config.KeysConfig) (*keys.Provider, error) {
	if cfg.Source == "vault" {
		return keys.FromVault(ctx, cfg.Vault)
	}
	return keys.FromDir(cfg.Dir, cfg.ActiveKID)
}

// buildProviders registers every social provider that has credentials
func buildProviders(cfg config.ProvidersConfig) providers.Registry {
	var list []providers.Provider
	if cfg.Google.Enabled() {
		list = append(list, google.New(cfg.Google))
	}
	if cfg.Facebook.Enabled() {
		list = append(list, facebook.New(cfg.Facebook))
	}
	if cfg.Line.Enabled() {
		list = append(list, line.New(cfg.Line))
	}
	return providers.NewRegistry(list...)
}
