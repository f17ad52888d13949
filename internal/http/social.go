package http

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	jwtlib "idp/internal/lib/jwt"
)

// SocialLogin sends the user agent to the named provider. The state
// parameter carries a CSRF nonce, pinned in a cookie, plus the local
// path to resume after the callback.
func (h *Handler) SocialLogin(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers.Lookup(chi.URLParam(r, "provider"))
	if !ok {
		h.renderErrorPage(w, http.StatusNotFound, "invalid_request", "Unknown social provider.")
		return
	}

	nonce, err := jwtlib.NewOpaqueToken()
	if err != nil {
		h.log.Error("failed to generate state nonce", "error", err.Error())
		h.renderErrorPage(w, http.StatusInternalServerError, "server_error",
			"The authorization server encountered an unexpected condition.")
		return
	}

	returnTo := safeReturnTo(r.URL.Query().Get("return_to"))
	state := nonce + "." + base64.RawURLEncoding.EncodeToString([]byte(returnTo))

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    nonce,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, provider.AuthorizationURL(state), http.StatusFound)
}

// SocialCallback finishes a provider round-trip: verify state, exchange
// the code for the provider's identity, resolve or create the local
// user and resume the interrupted flow. Every provider-side failure
// collapses to one generic page.
func (h *Handler) SocialCallback(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers.Lookup(chi.URLParam(r, "provider"))
	if !ok {
		h.renderErrorPage(w, http.StatusNotFound, "invalid_request", "Unknown social provider.")
		return
	}

	returnTo, ok := h.consumeState(w, r)
	if !ok {
		h.renderErrorPage(w, http.StatusBadRequest, "access_denied", "Social sign-in failed. Please try again.")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		// the provider declined or the user cancelled
		h.renderErrorPage(w, http.StatusBadRequest, "access_denied", "Social sign-in failed. Please try again.")
		return
	}

	info, err := provider.UserInfoFromCode(r.Context(), code)
	if err != nil {
		h.log.Warn("social provider exchange failed",
			"provider", provider.Name(), "error", err.Error())
		h.renderErrorPage(w, http.StatusBadGateway, "access_denied", "Social sign-in failed. Please try again.")
		return
	}

	user, err := h.identity.LoginSocial(r.Context(), provider.Name(), info.ID, info.Email)
	if err != nil {
		h.log.Error("social identity resolution failed", "error", err.Error())
		h.renderErrorPage(w, http.StatusInternalServerError, "server_error",
			"The authorization server encountered an unexpected condition.")
		return
	}

	h.startSession(w, r, user.ID, returnTo)
}

// consumeState validates the state parameter against the pinned nonce
// cookie and recovers the resume path. The cookie is cleared either way.
func (h *Handler) consumeState(w http.ResponseWriter, r *http.Request) (string, bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		return "", false
	}
	nonce, encoded, found := strings.Cut(r.URL.Query().Get("state"), ".")
	if !found || nonce == "" || nonce != cookie.Value {
		return "", false
	}
	decoded, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	return safeReturnTo(string(decoded)), true
}
