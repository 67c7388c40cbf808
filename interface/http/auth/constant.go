package auth

import "net/http"

const UserIdentityContextKey = "AuthenticatedUserIdentity"

// AuthenticationProvider guards the bridge's HTTP surfaces. The middleware
// wraps protected routes, the router serves the provider's own endpoints
// under /auth, and AuthenticationType describes the scheme to clients.
type AuthenticationProvider interface {
	AuthenticationMiddleware(next http.Handler) http.Handler
	AuthenticationRouter() http.Handler
	AuthenticationType() any
}

type AuthenticatorType struct {
	Type string `json:"type"`
}
