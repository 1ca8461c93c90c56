package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// Profile is the part of an OpenID Connect userinfo response we use.
// Providers return more; unknown fields are ignored.
type Profile struct {
	Subject    string `json:"sub"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

// UserInfoClient fetches the caller's profile from the identity provider.
//
// Session tokens are often minimal (just "sub"). When a token lacks the
// email, the user endpoint asks the IdP for the full profile, using the
// caller's own token as the bearer credential.
type UserInfoClient struct {
	url string
}

// NewUserInfoClient returns a client for the userinfo endpoint at url.
func NewUserInfoClient(url string) *UserInfoClient {
	return &UserInfoClient{url: url}
}

// Fetch calls the userinfo endpoint on behalf of the holder of accessToken.
//
// oauth2.NewClient wraps the base client in a Transport that adds
// "Authorization: Bearer <token>" to every request. The base client comes
// from ctx (oauth2.HTTPClient) when set, otherwise http.DefaultClient.
func (c *UserInfoClient) Fetch(ctx context.Context, accessToken string) (*Profile, error) {
	if accessToken == "" {
		return nil, errors.New("auth: userinfo needs an access token")
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building userinfo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: calling userinfo endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: userinfo endpoint returned status %d", resp.StatusCode)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("auth: decoding userinfo response: %w", err)
	}
	if p.Subject == "" {
		return nil, errors.New("auth: userinfo response has no subject")
	}

	return &p, nil
}
