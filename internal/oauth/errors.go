package oauth

import (
	"errors"
	"fmt"
)

// OAuth error codes from the RFC 6749 vocabulary
const (
	CodeInvalidRequest          = "invalid_request"
	CodeInvalidClient           = "invalid_client"
	CodeInvalidGrant            = "invalid_grant"
	CodeInvalidScope            = "invalid_scope"
	CodeUnauthorizedClient      = "unauthorized_client"
	CodeUnsupportedGrantType    = "unsupported_grant_type"
	CodeUnsupportedResponseType = "unsupported_response_type"
	CodeAccessDenied            = "access_denied"
)

// Error is a protocol error carried back to the client. Fatal errors
// arise before the redirect URI is trusted: they must render to the user
// agent directly and never redirect.
type Error struct {
	Code        string `json:"error"`
	Description string `json:"error_description"`
	Fatal       bool   `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// AsError unwraps err into a protocol *Error if it carries one
func AsError(err error) (*Error, bool) {
	var oe *Error
	if errors.As(err, &oe) {
		return oe, true
	}
	return nil, false
}

// FatalInvalidClient reports an unresolvable client before any redirect
// target is known
func FatalInvalidClient() *Error {
	return &Error{Code: CodeInvalidClient, Description: "client_id is missing or invalid.", Fatal: true}
}

// FatalInvalidRedirectURI reports a missing or unregistered redirect URI
func FatalInvalidRedirectURI() *Error {
	return &Error{Code: "invalid_redirect_uri", Description: "redirect_uri is missing or invalid.", Fatal: true}
}

func InvalidRequest(description string) *Error {
	if description == "" {
		description = "The request is missing a required parameter, includes an invalid parameter value, or is otherwise malformed."
	}
	return &Error{Code: CodeInvalidRequest, Description: description}
}

func InvalidClient(description string) *Error {
	if description == "" {
		description = "Client authentication failed."
	}
	return &Error{Code: CodeInvalidClient, Description: description}
}

func InvalidGrant(description string) *Error {
	if description == "" {
		description = "The provided authorization grant or refresh token is invalid, expired, revoked, or was issued to another client."
	}
	return &Error{Code: CodeInvalidGrant, Description: description}
}

func InvalidScope(description string) *Error {
	if description == "" {
		description = "The requested scope is invalid, unknown, or malformed."
	}
	return &Error{Code: CodeInvalidScope, Description: description}
}

func UnauthorizedClient(description string) *Error {
	if description == "" {
		description = "The client is not authorized to request an authorization code using this method."
	}
	return &Error{Code: CodeUnauthorizedClient, Description: description}
}

func UnsupportedGrantType(description string) *Error {
	if description == "" {
		description = "The authorization grant type is not supported by the authorization server."
	}
	return &Error{Code: CodeUnsupportedGrantType, Description: description}
}

func UnsupportedResponseType(description string) *Error {
	if description == "" {
		description = "The authorization server does not support obtaining an authorization code using this method."
	}
	return &Error{Code: CodeUnsupportedResponseType, Description: description}
}

func AccessDenied(description string) *Error {
	if description == "" {
		description = "The resource owner or authorization server denied the request."
	}
	return &Error{Code: CodeAccessDenied, Description: description}
}
