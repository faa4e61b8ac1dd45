package mpesa

import (
	"context"
	"net/http"

	"daraja/internal/config"
	"daraja/internal/provider"
	"daraja/internal/provider/base"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Credentials identify one merchant. They live only as long as the builder
// holding them and are never logged.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	Shortcode      string
	Passkey        string // STK push only
}

// Payload is the JSON object posted to Daraja. Keys are sent as written.
type Payload map[string]any

// Builder is implemented by every request family. A is the family's argument struct.
type Builder[A any] interface {
	Authenticate(ctx context.Context) (map[string]string, error)
	Build(args A) (Payload, error)
	Execute(ctx context.Context, args A) (*base.HTTPResponse, error)
}

// Option configures builders, the authenticator and the client
type Option func(*options)

type options struct {
	http   *base.HTTPClient
	logger zerolog.Logger
	clock  *Clock
}

// WithHTTPClient replaces the transport. The client keeps its own logger.
func WithHTTPClient(c *base.HTTPClient) Option {
	return func(o *options) { o.http = c }
}

// WithLogger sets the logger for outcome and transport logs
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock sets the clock used for STK timestamps and passwords
func WithClock(c *Clock) Option {
	return func(o *options) { o.clock = c }
}

func newOptions(cfg config.DarajaCfg, opts []Option) options {
	o := options{logger: log.Logger}
	for _, opt := range opts {
		opt(&o)
	}
	if o.http == nil {
		o.http = base.NewHTTPClient("mpesa", cfg.Timeout).WithLogger(o.logger)
	}
	return o
}

// requestBuilder carries what every family shares: the target URL, the
// authenticator and the transport.
type requestBuilder struct {
	family provider.Family
	url    string
	auth   *Authenticator
	http   *base.HTTPClient
	logger zerolog.Logger
}

func newRequestBuilder(family provider.Family, url string, cfg config.DarajaCfg, cred Credentials, o options) requestBuilder {
	return requestBuilder{
		family: family,
		url:    url,
		auth:   newAuthenticator(cfg, cred, o),
		http:   o.http,
		logger: o.logger,
	}
}

// Authenticate fetches a fresh token and returns it as an Authorization header
func (b *requestBuilder) Authenticate(ctx context.Context) (map[string]string, error) {
	token, err := b.auth.AccessToken(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

// submit authenticates and posts an already built payload
func (b *requestBuilder) submit(ctx context.Context, payload Payload) (*base.HTTPResponse, error) {
	headers, err := b.Authenticate(ctx)
	if err != nil {
		return nil, err
	}
	headers["Content-Type"] = "application/json"

	b.logger.Debug().Str("family", string(b.family)).Msg("submitting request")
	return b.http.Request(ctx, http.MethodPost, b.url, payload, headers)
}
