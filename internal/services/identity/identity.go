package identity

import (
	"context"
	"errors"
	"fmt"
	"golang.org/x/crypto/bcrypt"
	"idp/internal/domain/models"
	"idp/internal/storage"
	"log/slog"
)

// A syntactically valid bcrypt hash that matches no password. Verified
// against whenever the real hash is unavailable so that "unknown user"
// and "wrong password" take the same time.
const dummyPassHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserStorage reads/saves user accounts
type UserStorage interface {
	SaveUser(ctx context.Context, email string, passHash []byte) (int64, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
}

// SocialIdentityStorage links social identities to local users.
// CreateUserWithIdentity must commit the user and the link atomically.
type SocialIdentityStorage interface {
	UserBySocialIdentity(ctx context.Context, provider, providerUserID string) (*models.User, error)
	CreateUserWithIdentity(ctx context.Context, provider, providerUserID, email string) (*models.User, error)
}

// Resolver resolves or creates a user account from password credentials
// or from a social-provider identity
type Resolver struct {
	log        *slog.Logger
	users      UserStorage
	identities SocialIdentityStorage
}

// New returns a new instance of the identity Resolver
func New(log *slog.Logger, users UserStorage, identities SocialIdentityStorage) *Resolver {
	return &Resolver{log: log, users: users, identities: identities}
}

// LoginPassword checks if user with given credentials exists in system.
//
// Every failure path returns storage.ErrInvalidCredentials: which check
// failed must not be observable, neither through the error nor through
// timing. Do not short-circuit the dummy verification.
func (r *Resolver) LoginPassword(ctx context.Context, email, password string) (*models.User, error) {
	const op = "identity.LoginPassword"
	logger := r.log.With(slog.String("op", op))

	if email == "" || password == "" {
		return nil, storage.ErrInvalidCredentials
	}

	user, err := r.users.UserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		_ = bcrypt.CompareHashAndPassword([]byte(dummyPassHash), []byte(password))
		logger.Info("login attempt for unknown email")
		return nil, storage.ErrInvalidCredentials
	}

	if len(user.PassHash) == 0 {
		// social-only account, no password to check
		_ = bcrypt.CompareHashAndPassword([]byte(dummyPassHash), []byte(password))
		return nil, storage.ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Info("invalid credentials")
		return nil, storage.ErrInvalidCredentials
	}

	logger.Info("user logged in successfully", slog.Int64("user_id", user.ID))
	return user, nil
}

// LoginSocial resolves the user owning a (provider, providerUserID)
// identity, creating the account and the link together when the identity
// is new. Email may be empty: some providers' consent scopes omit it.
func (r *Resolver) LoginSocial(ctx context.Context, provider, providerUserID, email string) (*models.User, error) {
	const op = "identity.LoginSocial"
	logger := r.log.With(slog.String("op", op), slog.String("provider", provider))

	user, err := r.identities.UserBySocialIdentity(ctx, provider, providerUserID)
	if err == nil {
		logger.Info("user found via social identity", slog.Int64("user_id", user.ID))
		return user, nil
	}
	if !errors.Is(err, storage.ErrIdentityNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err = r.identities.CreateUserWithIdentity(ctx, provider, providerUserID, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("new user created and linked", slog.Int64("user_id", user.ID))
	return user, nil
}

// Register a new user and hashed password.
//
// Returns user's id.
func (r *Resolver) Register(ctx context.Context, email, password string) (int64, error) {
	const op = "identity.Register"
	logger := r.log.With(slog.String("op", op))

	if email == "" || password == "" {
		return 0, storage.ErrInvalidCredentials
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	userID, err := r.users.SaveUser(ctx, email, passHash)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return 0, storage.ErrUserExists
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("successfully registered user", slog.Int64("user_id", userID))
	return userID, nil
}
