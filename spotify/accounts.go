package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	bserrors "badstats/internal/errors"
)

// DefaultAccountsURL is the Spotify authorization server.
const DefaultAccountsURL = "https://accounts.spotify.com"

// Grant is the outcome of a token-endpoint request. Expires is absolute,
// computed from the authorization server's Date response header plus
// expires_in so that clock skew between us and the server does not shorten
// or stretch the token's usable window.
type Grant struct {
	AccessToken  string
	RefreshToken string
	Expires      time.Time
}

// AccountsClient talks to the authorization server's token endpoint using
// HTTP Basic auth built from the application's client id and secret.
type AccountsClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

type AccountsOption func(*AccountsClient)

// WithAccountsURL points the client at a different authorization server,
// primarily for tests.
func WithAccountsURL(baseURL string) AccountsOption {
	return func(c *AccountsClient) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithAccountsHTTPClient(httpClient *http.Client) AccountsOption {
	return func(c *AccountsClient) {
		c.httpClient = httpClient
	}
}

func NewAccountsClient(clientID, clientSecret string, options ...AccountsOption) *AccountsClient {
	c := &AccountsClient{
		baseURL:      DefaultAccountsURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   http.DefaultClient,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// AuthorizeURL builds the browser redirect for the handshake's second leg.
// The state parameter carries the CSRF token; show_dialog forces the consent
// screen so a returning user can pick a different account.
func (c *AccountsClient) AuthorizeURL(redirectURI, scope, state string) string {
	conf := &oauth2.Config{
		ClientID:    c.clientID,
		RedirectURL: redirectURI,
		Scopes:      strings.Fields(scope),
		Endpoint:    oauth2.Endpoint{AuthURL: c.baseURL + "/authorize"},
	}
	return conf.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// ClientCredentials requests an app-level token.
func (c *AccountsClient) ClientCredentials(ctx context.Context) (*Grant, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	grant, err := c.token(ctx, form)
	if err != nil {
		return nil, errors.Wrap(err, "AccountsClient.ClientCredentials")
	}
	return grant, nil
}

// Exchange swaps an authorization code for a user token. redirectURI must
// exactly match the one used in the authorize redirect or the server
// rejects the exchange.
func (c *AccountsClient) Exchange(ctx context.Context, code, redirectURI string) (*Grant, error) {
	form := url.Values{
		"grant_type":   {"authorization_code"},
		"code":         {code},
		"redirect_uri": {redirectURI},
	}
	grant, err := c.token(ctx, form)
	if err != nil {
		return nil, errors.Wrap(err, "AccountsClient.Exchange")
	}
	return grant, nil
}

// RefreshGrant renews a user token from its refresh credential. The server
// may or may not rotate the refresh credential; Grant.RefreshToken is empty
// when it does not.
func (c *AccountsClient) RefreshGrant(ctx context.Context, refreshToken string) (*Grant, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	grant, err := c.token(ctx, form)
	if err != nil {
		if bserrors.Is(err, bserrors.ErrTokenRequest) {
			return nil, errors.Wrap(bserrors.ErrTokenRefresh, "AccountsClient.RefreshGrant")
		}
		return nil, errors.Wrap(err, "AccountsClient.RefreshGrant")
	}
	return grant, nil
}

func (c *AccountsClient) token(ctx context.Context, form url.Values) (*Grant, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "AccountsClient.token NewRequest")
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "AccountsClient.token Do")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, errors.Wrapf(bserrors.ErrTokenRequest, "AccountsClient.token status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken  string `json:"access_token"`
		ExpiresIn    int    `json:"expires_in"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "AccountsClient.token Decode")
	}

	baseline, err := http.ParseTime(resp.Header.Get("Date"))
	if err != nil {
		// A server not sending Date is out of spec; local time is the only
		// baseline left.
		baseline = time.Now().UTC()
	}

	return &Grant{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		Expires:      baseline.Add(time.Duration(body.ExpiresIn) * time.Second).UTC(),
	}, nil
}
