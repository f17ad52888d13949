package http

import (
	"encoding/json"
	"net/http"

	"idp/internal/oauth"
	"idp/internal/services/token"
)

// Token is the token endpoint. Protocol errors come back as JSON with a
// 4xx status; invalid_client additionally carries a WWW-Authenticate
// challenge per RFC 6749 section 5.2.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeTokenError(w, oauth.InvalidRequest("Malformed form body."))
		return
	}

	req := &token.Request{
		GrantType:           r.PostFormValue("grant_type"),
		Code:                r.PostFormValue("code"),
		RedirectURI:         r.PostFormValue("redirect_uri"),
		ClientID:            r.PostFormValue("client_id"),
		ClientSecret:        r.PostFormValue("client_secret"),
		Scope:               r.PostFormValue("scope"),
		RefreshToken:        r.PostFormValue("refresh_token"),
		CodeVerifier:        r.PostFormValue("code_verifier"),
		AuthorizationHeader: r.Header.Get("Authorization"),
	}

	resp, err := h.tokens.Exchange(r.Context(), req)
	if err != nil {
		if oe, ok := oauth.AsError(err); ok {
			h.writeTokenError(w, oe)
			return
		}
		h.log.Error("token exchange failed", "error", err.Error())
		h.writeJSON(w, http.StatusInternalServerError, &oauth.Error{
			Code:        "server_error",
			Description: "The authorization server encountered an unexpected condition.",
		})
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeTokenError(w http.ResponseWriter, oe *oauth.Error) {
	status := http.StatusBadRequest
	if oe.Code == oauth.CodeInvalidClient {
		status = http.StatusUnauthorized
		w.Header().Set("WWW-Authenticate", `Basic realm="oauth"`)
	}
	h.writeJSON(w, status, oe)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to write response body", "error", err.Error())
	}
}
