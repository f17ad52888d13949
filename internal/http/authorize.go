package http

import (
	"net/http"
	"net/url"

	"idp/internal/domain/models"
	"idp/internal/oauth"
	"idp/internal/services/authorize"
)

// Authorize is the entry point of the authorization code flow. Fatal
// validation errors render a page because the redirect URI is not yet
// trusted; every later error goes back to the client as a redirect
// carrying error, error_description and the echoed state.
func (h *Handler) Authorize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := authorize.Request{
		ClientID:            q.Get("client_id"),
		RedirectURI:         q.Get("redirect_uri"),
		ResponseType:        q.Get("response_type"),
		Scope:               q.Get("scope"),
		State:               q.Get("state"),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: q.Get("code_challenge_method"),
	}

	client, err := h.validator.Validate(r.Context(), req)
	if err != nil {
		if oe, ok := oauth.AsError(err); ok {
			if oe.Fatal {
				h.renderErrorPage(w, http.StatusBadRequest, oe.Code, oe.Description)
				return
			}
			h.redirectError(w, r, req.RedirectURI, req.State, oe)
			return
		}
		h.log.Error("authorize validation failed", "error", err.Error())
		h.renderErrorPage(w, http.StatusInternalServerError, "server_error",
			"The authorization server encountered an unexpected condition.")
		return
	}

	sess := h.currentSession(r)
	if sess == nil {
		returnTo := r.URL.Path + "?" + r.URL.RawQuery
		h.renderLoginPage(w, http.StatusOK, loginPageData{ReturnTo: returnTo})
		return
	}

	code, err := h.codes.Issue(r.Context(), sess.UserID, client.ID, sess.ID,
		req.RedirectURI, req.CodeChallenge, req.CodeChallengeMethod)
	if err != nil {
		h.log.Error("failed to issue authorization code", "error", err.Error())
		h.redirectError(w, r, req.RedirectURI, req.State,
			oauth.InvalidRequest("The authorization request could not be completed."))
		return
	}

	target, _ := url.Parse(req.RedirectURI)
	values := target.Query()
	values.Set("code", code)
	if req.State != "" {
		values.Set("state", req.State)
	}
	target.RawQuery = values.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}

// redirectError sends a protocol error back to an already-validated
// redirect URI
func (h *Handler) redirectError(w http.ResponseWriter, r *http.Request, redirectURI, state string, oe *oauth.Error) {
	target, err := url.Parse(redirectURI)
	if err != nil {
		h.renderErrorPage(w, http.StatusBadRequest, oe.Code, oe.Description)
		return
	}
	values := target.Query()
	values.Set("error", oe.Code)
	values.Set("error_description", oe.Description)
	if state != "" {
		values.Set("state", state)
	}
	target.RawQuery = values.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}

// currentSession resolves the browser session cookie, if any
func (h *Handler) currentSession(r *http.Request) *models.Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}
	return h.sessions.Validate(r.Context(), cookie.Value)
}
