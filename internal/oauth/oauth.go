package oauth

// Grant types supported by the token endpoint
const (
	GrantAuthorizationCode = "authorization_code"
	GrantClientCredentials = "client_credentials"
	GrantRefreshToken      = "refresh_token"
)

// Response types supported by the authorize endpoint
const (
	ResponseTypeCode = "code"
)

// PKCE code challenge methods
const (
	MethodPlain = "plain"
	MethodS256  = "S256"
)

// Token endpoint client authentication methods
const (
	AuthMethodNone  = "none"
	AuthMethodBasic = "client_secret_basic"
	AuthMethodPost  = "client_secret_post"
)

// SupportedGrantTypes in dispatch order
var SupportedGrantTypes = []string{
	GrantAuthorizationCode,
	GrantClientCredentials,
	GrantRefreshToken,
}

// SupportedResponseTypes for the authorize endpoint
var SupportedResponseTypes = []string{
	ResponseTypeCode,
}

// SupportedCodeChallengeMethods for PKCE
var SupportedCodeChallengeMethods = []string{
	MethodS256,
	MethodPlain,
}

// SupportedAuthMethods for the token endpoint
var SupportedAuthMethods = []string{
	AuthMethodNone,
	AuthMethodBasic,
	AuthMethodPost,
}
