package client

import (
	"context"

	"github.com/fruitsalade/sitedeck/pkg/models"
	"github.com/fruitsalade/sitedeck/pkg/protocol"
)

// Operation names, used for errors, logs and metric labels.
const (
	OpAuthStatus   = "auth_status"
	OpAuthenticate = "authenticate"
	OpLogout       = "logout"
	OpSiteInfo     = "site_info"
	OpList         = "list"
	OpUpload       = "upload"
	OpCreateFile   = "create_file"
	OpRead         = "read"
	OpDelete       = "delete"
)

// Credentials is one of the two login modes: username+password or API key.
type Credentials struct {
	Username string
	Password string
	APIKey   string
}

// IsAPIKey reports whether the credentials use the API key mode.
func (c Credentials) IsAPIKey() bool {
	return c.APIKey != ""
}

// Validate rejects empty and mixed credentials before any request is sent.
func (c Credentials) Validate() error {
	hasUserPass := c.Username != "" || c.Password != ""
	if c.APIKey != "" && hasUserPass {
		return ErrMixedCredentials
	}
	if c.APIKey != "" {
		return nil
	}
	if c.Username == "" || c.Password == "" {
		return ErrNoCredentials
	}
	return nil
}

func (c Credentials) request() protocol.AuthRequest {
	if c.IsAPIKey() {
		return protocol.AuthRequest{APIKey: c.APIKey}
	}
	return protocol.AuthRequest{Username: c.Username, Password: c.Password}
}

// AuthStatus queries the current authentication state without credentials.
// An envelope with result "error" is returned as an *APIError alongside the
// decoded response.
func (c *Client) AuthStatus(ctx context.Context) (*protocol.AuthStatusResponse, error) {
	var resp protocol.AuthStatusResponse
	err := c.getJSON(ctx, OpAuthStatus, "/api/auth", &resp, func() error {
		if resp.Failed() {
			return &APIError{Op: OpAuthStatus, Message: resp.Message}
		}
		return nil
	})
	if err != nil {
		if _, ok := AsAPIError(err); ok {
			return &resp, err
		}
		return nil, err
	}
	return &resp, nil
}

// Session converts an auth status response into session state.
func Session(status *protocol.AuthStatusResponse) models.Session {
	if status == nil || !status.Authenticated() {
		return models.Session{}
	}
	return models.Session{
		Authenticated: true,
		Username:      status.Username,
		HasUsername:   status.HasUsername,
		HasAPIKey:     status.HasAPIKey,
	}
}

// Authenticate posts the credentials. A response with success=false is
// returned as an *APIError carrying the server message, which may be empty.
func (c *Client) Authenticate(ctx context.Context, creds Credentials) error {
	if err := creds.Validate(); err != nil {
		return err
	}
	var resp protocol.AuthResponse
	return c.postJSON(ctx, OpAuthenticate, "/api/auth", creds.request(), &resp, func() error {
		if !resp.Success {
			return &APIError{Op: OpAuthenticate, Message: resp.Message}
		}
		return nil
	})
}

// Logout posts empty credentials, clearing the server-side session.
func (c *Client) Logout(ctx context.Context) error {
	var resp protocol.AuthResponse
	return c.postJSON(ctx, OpLogout, "/api/auth", protocol.LogoutRequest{}, &resp, func() error {
		if resp.Failed() {
			return &APIError{Op: OpLogout, Message: resp.Message}
		}
		return nil
	})
}
