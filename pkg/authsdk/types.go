package authsdk

// AuthorizeResponse is the body of a successful GET /auth.
type AuthorizeResponse struct {
	// Active is always true on a 200 response.
	Active bool `json:"active"`

	// Sub is the user's subject identifier in the pool.
	Sub string `json:"sub"`

	Username string `json:"username,omitempty"`
	ClientID string `json:"client_id"`
	Scope    string `json:"scope,omitempty"`

	// Exp is the access token expiry as unix seconds.
	Exp int64 `json:"exp"`
}

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime,omitempty"`
	Version string `json:"version,omitempty"`

	// Checks contains dependency status, only on /readyz.
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of the service's dependencies.
type HealthChecks struct {
	// KeySet indicates whether the user pool signing keys can be loaded.
	KeySet string `json:"key_set"`
}
