package credsdk

import (
	"context"
	"net/http"
)

// Mint asks the service to issue a token pair for a subject. Requires an
// API key with the credkit:mint permission.
func (c *Client) Mint(ctx context.Context, subjectID string, scopes []string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/tokens/mint",
		MintRequest{SubjectID: subjectID, Scopes: scopes}, nil, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh rotates a refresh token into a new pair. The presented token is
// retired server-side whether or not the caller keeps it.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/tokens/refresh",
		RefreshRequest{RefreshToken: refreshToken}, nil, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Revoke retires one or both tokens of a pair ahead of expiry.
func (c *Client) Revoke(ctx context.Context, accessToken, refreshToken string) error {
	return c.doJSON(ctx, http.MethodPost, "/v1/tokens/revoke",
		RevokeRequest{AccessToken: accessToken, RefreshToken: refreshToken},
		nil, nil, http.StatusNoContent)
}

// Introspect reports whether a token is currently valid and, if so, the
// identity it carries.
func (c *Client) Introspect(ctx context.Context, token string) (*IntrospectResponse, error) {
	var out IntrospectResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/tokens/introspect",
		IntrospectRequest{Token: token}, nil, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
