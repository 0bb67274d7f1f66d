package domain

// TokenBundle is what a successful user pool authentication returns.
type TokenBundle struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	ExpiresIn    int32 // seconds
}

// Cookie names for the three tokens of a bundle.
const (
	CookieAccessToken  = "access_token"
	CookieIDToken      = "id_token"
	CookieRefreshToken = "refresh_token"
)

// Tokens returns the bundle as cookie name -> raw value pairs.
func (b TokenBundle) Tokens() map[string]string {
	return map[string]string{
		CookieAccessToken:  b.AccessToken,
		CookieIDToken:      b.IDToken,
		CookieRefreshToken: b.RefreshToken,
	}
}
