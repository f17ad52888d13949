package http

import (
	"net/http"

	"idp/internal/oauth"
)

// discoveryDocument is the OIDC provider metadata shape. Everything in
// it derives from this server's own configured capabilities.
type discoveryDocument struct {
	Issuer                           string   `json:"issuer"`
	AuthorizationEndpoint            string   `json:"authorization_endpoint"`
	TokenEndpoint                    string   `json:"token_endpoint"`
	JWKSURI                          string   `json:"jwks_uri"`
	ResponseTypesSupported           []string `json:"response_types_supported"`
	GrantTypesSupported              []string `json:"grant_types_supported"`
	CodeChallengeMethodsSupported    []string `json:"code_challenge_methods_supported"`
	TokenEndpointAuthMethods         []string `json:"token_endpoint_auth_methods_supported"`
	SubjectTypesSupported            []string `json:"subject_types_supported"`
	IDTokenSigningAlgValuesSupported []string `json:"id_token_signing_alg_values_supported"`
}

// Discovery serves the OIDC provider metadata document
func (h *Handler) Discovery(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, discoveryDocument{
		Issuer:                           h.baseURL,
		AuthorizationEndpoint:            h.baseURL + "/oauth/authorize",
		TokenEndpoint:                    h.baseURL + "/oauth/token",
		JWKSURI:                          h.baseURL + "/.well-known/jwks.json",
		ResponseTypesSupported:           oauth.SupportedResponseTypes,
		GrantTypesSupported:              oauth.SupportedGrantTypes,
		CodeChallengeMethodsSupported:    oauth.SupportedCodeChallengeMethods,
		TokenEndpointAuthMethods:         oauth.SupportedAuthMethods,
		SubjectTypesSupported:            []string{"public"},
		IDTokenSigningAlgValuesSupported: []string{"RS256"},
	})
}

// JWKS publishes the verification key set
func (h *Handler) JWKS(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	h.writeJSON(w, http.StatusOK, h.keys.PublicKeys())
}
