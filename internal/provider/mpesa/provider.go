package mpesa

import (
	"context"

	"daraja/internal/config"
	"daraja/internal/provider"

	"github.com/rs/zerolog"
)

// Client runs Daraja operations for one merchant. Each call builds a fresh
// request, authenticates, submits once and parses the reply.
type Client struct {
	cfg    config.DarajaCfg
	cred   Credentials
	opts   []Option
	logger zerolog.Logger
}

var _ provider.Provider = (*Client)(nil)

// New creates a client. The time zone is checked up front so STK calls
// cannot fail on it later.
func New(cfg config.DarajaCfg, cred Credentials, opts ...Option) (*Client, error) {
	o := newOptions(cfg, opts)
	if o.clock == nil {
		clock, err := NewClock(cfg.Timezone)
		if err != nil {
			return nil, err
		}
		o.clock = clock
	}
	// One transport and clock for every request the client builds
	shared := []Option{WithLogger(o.logger), WithHTTPClient(o.http), WithClock(o.clock)}
	return &Client{cfg: cfg, cred: cred, opts: shared, logger: o.logger}, nil
}

// Name returns the provider name
func (c *Client) Name() string {
	return "M-Pesa (Safaricom Daraja)"
}

// SupportedOperations returns the request families the client can run
func (c *Client) SupportedOperations() []provider.Family {
	return []provider.Family{
		provider.FamilySTKPush,
		provider.FamilySTKPushQuery,
		provider.FamilyB2C,
		provider.FamilyReversal,
		provider.FamilyTransactionStatus,
		provider.FamilyC2BRegister,
	}
}

// AccessToken fetches a bearer token with the client's credentials
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	return NewAuthenticator(c.cfg, c.cred, c.opts...).AccessToken(ctx)
}

// STKPush initiates an STK push payment
func (c *Client) STKPush(ctx context.Context, args STKPushArgs) (map[string]any, error) {
	req, err := NewStkPushPaymentRequest(c.cfg, c.cred, c.opts...)
	if err != nil {
		return nil, err
	}
	return run(ctx, c, provider.FamilySTKPush, req, args)
}

// STKPushStatus queries the outcome of an STK push
func (c *Client) STKPushStatus(ctx context.Context, args STKPushStatusArgs) (map[string]any, error) {
	req, err := NewStkPushStatusQueryRequest(c.cfg, c.cred, c.opts...)
	if err != nil {
		return nil, err
	}
	return run(ctx, c, provider.FamilySTKPushQuery, req, args)
}

// B2C initiates a business to customer payment
func (c *Client) B2C(ctx context.Context, args B2CArgs) (map[string]any, error) {
	return run(ctx, c, provider.FamilyB2C, NewB2CPaymentRequest(c.cfg, c.cred, c.opts...), args)
}

// Reverse initiates a transaction reversal
func (c *Client) Reverse(ctx context.Context, args ReversalArgs) (map[string]any, error) {
	return run(ctx, c, provider.FamilyReversal, NewReversalRequest(c.cfg, c.cred, c.opts...), args)
}

// TransactionStatus initiates a transaction status query
func (c *Client) TransactionStatus(ctx context.Context, args TransactionStatusArgs) (map[string]any, error) {
	return run(ctx, c, provider.FamilyTransactionStatus, NewTransactionStatusQueryRequest(c.cfg, c.cred, c.opts...), args)
}

// RegisterC2B registers the C2B confirmation and validation URLs
func (c *Client) RegisterC2B(ctx context.Context, args C2BRegisterArgs) (map[string]any, error) {
	return run(ctx, c, provider.FamilyC2BRegister, NewC2BRegisterURLRequest(c.cfg, c.cred, c.opts...), args)
}

func run[A any](ctx context.Context, c *Client, family provider.Family, b Builder[A], args A) (map[string]any, error) {
	resp, err := b.Execute(ctx, args)
	if err != nil {
		return nil, err
	}

	parser, err := NewResponseParser(family, resp, c.logger)
	if err != nil {
		return nil, err
	}
	return parser.Parse(), nil
}
