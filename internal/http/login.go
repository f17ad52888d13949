package http

import (
	"errors"
	"net/http"
	"strings"

	"idp/internal/storage"
)

// Login authenticates a password credential posted from the sign-in
// page and redirects back into the authorization flow
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderErrorPage(w, http.StatusBadRequest, "invalid_request", "Malformed form body.")
		return
	}
	returnTo := safeReturnTo(r.PostFormValue("return_to"))

	user, err := h.identity.LoginPassword(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, storage.ErrInvalidCredentials) {
			h.renderLoginPage(w, http.StatusUnauthorized, loginPageData{
				ReturnTo: returnTo,
				Message:  "Invalid email or password.",
			})
			return
		}
		h.log.Error("password login failed", "error", err.Error())
		h.renderErrorPage(w, http.StatusInternalServerError, "server_error",
			"The authorization server encountered an unexpected condition.")
		return
	}

	h.startSession(w, r, user.ID, returnTo)
}

// Register creates a password account and signs the new user straight in
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderErrorPage(w, http.StatusBadRequest, "invalid_request", "Malformed form body.")
		return
	}
	returnTo := safeReturnTo(r.PostFormValue("return_to"))

	userID, err := h.identity.Register(r.Context(), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrUserExists):
			h.renderLoginPage(w, http.StatusConflict, loginPageData{
				ReturnTo: returnTo,
				Message:  "An account with this email already exists.",
			})
		case errors.Is(err, storage.ErrInvalidCredentials):
			h.renderLoginPage(w, http.StatusBadRequest, loginPageData{
				ReturnTo: returnTo,
				Message:  "Email and password are required.",
			})
		default:
			h.log.Error("registration failed", "error", err.Error())
			h.renderErrorPage(w, http.StatusInternalServerError, "server_error",
				"The authorization server encountered an unexpected condition.")
		}
		return
	}

	h.startSession(w, r, userID, returnTo)
}

// startSession creates a session for the user, sets the cookie and
// resumes the flow the login interrupted
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request, userID int64, returnTo string) {
	sess, err := h.sessions.Create(r.Context(), userID)
	if err != nil {
		h.log.Error("failed to create session", "error", err.Error())
		h.renderErrorPage(w, http.StatusInternalServerError, "server_error",
			"The authorization server encountered an unexpected condition.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, returnTo, http.StatusSeeOther)
}

// safeReturnTo confines post-login redirects to local paths
func safeReturnTo(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return "/"
	}
	return raw
}
