package mpesa

import (
	"context"
	"encoding/json"
	"net/http"

	"daraja/internal/config"
	"daraja/internal/provider"
	"daraja/internal/provider/base"

	"github.com/rs/zerolog"
)

// Token is the body of a successful OAuth call. Daraja quotes expires_in;
// a bare number decodes as well.
type Token struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   json.Number `json:"expires_in"`
}

// Authenticator exchanges the consumer key and secret for a bearer token.
// Tokens are not cached: every call hits the OAuth endpoint once.
type Authenticator struct {
	url    string
	key    string
	secret string
	http   *base.HTTPClient
	logger zerolog.Logger
}

// NewAuthenticator creates an authenticator for cred against cfg.OAuthURL
func NewAuthenticator(cfg config.DarajaCfg, cred Credentials, opts ...Option) *Authenticator {
	return newAuthenticator(cfg, cred, newOptions(cfg, opts))
}

func newAuthenticator(cfg config.DarajaCfg, cred Credentials, o options) *Authenticator {
	return &Authenticator{
		url:    cfg.OAuthURL,
		key:    cred.ConsumerKey,
		secret: cred.ConsumerSecret,
		http:   o.http,
		logger: o.logger,
	}
}

// AccessToken performs one GET against the OAuth endpoint
func (a *Authenticator) AccessToken(ctx context.Context) (string, error) {
	resp, err := a.http.Request(ctx, http.MethodGet, a.url, nil, nil, base.WithBasicAuth(a.key, a.secret))
	if resp == nil {
		return "", &provider.NoResponseError{Message: "Could not retrieve access token.", Err: err}
	}

	if resp.StatusCode == http.StatusOK {
		var token Token
		if err := resp.UnmarshalJSON(&token); err != nil {
			return "", &provider.ProviderError{
				Code:        provider.ErrAuthFailed,
				Message:     "decode access token",
				ProviderErr: err.Error(),
			}
		}
		return token.AccessToken, nil
	}

	var body struct {
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil || body.ErrorMessage == "" {
		body.ErrorMessage = resp.Status
	}
	a.logger.Error().Int("status_code", resp.StatusCode).Msg("access token request rejected")
	return "", &provider.AuthenticationError{StatusCode: resp.StatusCode, Message: body.ErrorMessage}
}
