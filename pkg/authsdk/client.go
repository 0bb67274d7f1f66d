package authsdk

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// ErrNoSessionCookies is returned by Login when a 200 response carries no
// session cookies.
var ErrNoSessionCookies = errors.New("authsdk: login response has no session cookies")

// SDKClient provides access to the login gateway.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new client for the service at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	hc := cleanhttp.DefaultClient()
	hc.Timeout = 10 * time.Second
	return &SDKClient{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: hc,
	}
}

// Login posts the credentials to /login and returns the session cookies
// set by a successful response.
func (c *SDKClient) Login(ctx context.Context, email, password string) ([]*http.Cookie, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	resp, err := c.doRequest(ctx, http.MethodPost, "/login", strings.NewReader(form.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"}, nil)
	if err != nil {
		return nil, err
	}
	cookies := resp.Cookies()
	if err := checkStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}
	if len(cookies) == 0 {
		return nil, ErrNoSessionCookies
	}
	return cookies, nil
}

// Authorize sends cookies to /auth and returns the verified token details.
func (c *SDKClient) Authorize(ctx context.Context, cookies []*http.Cookie) (*AuthorizeResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/auth", nil, nil, cookies)
	if err != nil {
		return nil, err
	}

	var out AuthorizeResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
