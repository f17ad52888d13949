package models

// SocialIdentity links a (provider, provider_user_id) pair to one local user.
// The pair is unique together; many identities may point to the same user.
type SocialIdentity struct {
	ID             int64  `json:"id" db:"id"`
	UserID         int64  `json:"user_id" db:"user_id"`
	Provider       string `json:"provider" db:"provider"`
	ProviderUserID string `json:"provider_user_id" db:"provider_user_id"`
}
