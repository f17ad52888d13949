package repositories

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5"
	"idp/internal/domain/models"
	"idp/internal/storage"
	"idp/internal/storage/postgres"
)

// ClientRepository resolves registered OAuth clients by their public identifier
type ClientRepository struct {
	db *postgres.Storage
}

// NewClientRepository creates new instance of ClientRepository
func NewClientRepository(db *postgres.Storage) *ClientRepository {
	return &ClientRepository{db: db}
}

// ClientByClientID gets models.Client from db by its public client_id
func (r *ClientRepository) ClientByClientID(ctx context.Context, clientID string) (*models.Client, error) {
	var client models.Client
	var secret *string
	err := r.db.Pool.QueryRow(
		ctx,
		`SELECT id, client_id, client_secret, client_name, grant_types, allowed_scopes, redirect_uris, token_endpoint_auth_method
		 FROM clients WHERE client_id = $1`,
		clientID,
	).Scan(
		&client.ID,
		&client.ClientID,
		&secret,
		&client.Name,
		&client.GrantTypes,
		&client.Scopes,
		&client.RedirectURIs,
		&client.AuthMethod,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to query client: %w", err)
	}
	if secret != nil {
		client.Secret = *secret
	}
	return &client, nil
}
