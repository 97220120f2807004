package credsdk

import (
	"context"
	"net/http"
)

// CreateAPIKey provisions a new API key. Requires an API key with the
// credkit:admin permission.
func (c *Client) CreateAPIKey(ctx context.Context, owner string, permissions []string) (*APIKeyCreateResponse, error) {
	var out APIKeyCreateResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/apikeys",
		APIKeyCreateRequest{Owner: owner, Permissions: permissions}, nil, &out, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeAPIKey deletes an API key. Requires the credkit:admin permission.
func (c *Client) RevokeAPIKey(ctx context.Context, apiKey string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/apikeys",
		APIKeyRevokeRequest{APIKey: apiKey}, nil, nil, http.StatusNoContent)
}

// Bootstrap creates the first admin API key using the deployment's
// bootstrap token. Works exactly once per deployment.
func (c *Client) Bootstrap(ctx context.Context, bootstrapToken string) (*BootstrapResponse, error) {
	var out BootstrapResponse
	err := c.doJSON(ctx, http.MethodPost, "/v1/bootstrap", nil,
		map[string]string{"X-Bootstrap-Token": bootstrapToken}, &out, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
