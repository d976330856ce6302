package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const userinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

type GoogleProfile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleVerifier resolves a client-supplied Google access token to the
// profile it belongs to.
type GoogleVerifier interface {
	Profile(ctx context.Context, accessToken string) (*GoogleProfile, error)
}

type googleClient struct {
	client  *http.Client
	baseURL string
}

// NewGoogleClient builds a verifier against Google's userinfo endpoint. If
// client is nil a 10 second timeout client is used; baseURL is overridable
// for tests and falls back to the real endpoint when empty.
func NewGoogleClient(client *http.Client, baseURL string) GoogleVerifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = userinfoURL
	}
	return &googleClient{client: client, baseURL: baseURL}
}

func (g *googleClient) Profile(ctx context.Context, accessToken string) (*GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed: status %d", resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo response: %w", err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("userinfo response missing email")
	}
	return &profile, nil
}

// OAuthFlow is the server-side redirect variant of Google login, for clients
// that cannot run the token flow themselves.
type OAuthFlow struct {
	cfg *oauth2.Config
}

func NewOAuthFlow(clientID, clientSecret, redirectURL string) *OAuthFlow {
	return &OAuthFlow{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (f *OAuthFlow) Configured() bool {
	return f.cfg.ClientID != "" && f.cfg.ClientSecret != "" && f.cfg.RedirectURL != ""
}

func (f *OAuthFlow) AuthCodeURL(state string) string {
	return f.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// ExchangeProfile trades the callback code for a token and fetches the
// profile with it.
func (f *OAuthFlow) ExchangeProfile(ctx context.Context, code string) (*GoogleProfile, error) {
	tok, err := f.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth exchange: %w", err)
	}

	resp, err := f.cfg.Client(ctx, tok).Get(userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("userinfo fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed: status %d", resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo response: %w", err)
	}
	return &profile, nil
}
