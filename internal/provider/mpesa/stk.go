package mpesa

import (
	"context"

	"daraja/internal/config"
	"daraja/internal/provider"
	"daraja/internal/provider/base"
)

// STKPushArgs are the caller supplied fields of an STK push.
// Recipient is the MSISDN charged and prompted.
type STKPushArgs struct {
	AccountReference       string
	Amount                 string
	Recipient              string
	TransactionDescription string
}

// STKPushStatusArgs identify the STK push being queried
type STKPushStatusArgs struct {
	CheckoutRequestID string
}

// stkRequest holds what both STK families need on top of requestBuilder
type stkRequest struct {
	requestBuilder
	shortcode string
	passkey   string
	clock     *Clock
}

func newSTKRequest(family provider.Family, url string, cfg config.DarajaCfg, cred Credentials, opts []Option) (stkRequest, error) {
	o := newOptions(cfg, opts)
	clock := o.clock
	if clock == nil {
		var err error
		if clock, err = NewClock(cfg.Timezone); err != nil {
			return stkRequest{}, err
		}
	}
	return stkRequest{
		requestBuilder: newRequestBuilder(family, url, cfg, cred, o),
		shortcode:      cred.Shortcode,
		passkey:        cred.Passkey,
		clock:          clock,
	}, nil
}

// credentials returns one timestamp and the password derived from it
func (r *stkRequest) credentials() (password, timestamp string) {
	timestamp = r.clock.Timestamp()
	return stkPassword(r.shortcode, r.passkey, timestamp), timestamp
}

func (r *stkRequest) requireMerchant() error {
	return base.RequireFields(r.family,
		base.Field{Name: "shortcode", Value: r.shortcode},
		base.Field{Name: "passkey", Value: r.passkey},
	)
}

// StkPushPaymentRequest prompts a customer to pay the merchant shortcode
type StkPushPaymentRequest struct {
	stkRequest
	callbackURL string
}

var _ Builder[STKPushArgs] = (*StkPushPaymentRequest)(nil)

func NewStkPushPaymentRequest(cfg config.DarajaCfg, cred Credentials, opts ...Option) (*StkPushPaymentRequest, error) {
	r, err := newSTKRequest(provider.FamilySTKPush, cfg.STKPush.URL, cfg, cred, opts)
	if err != nil {
		return nil, err
	}
	return &StkPushPaymentRequest{stkRequest: r, callbackURL: cfg.STKPush.CallbackURL}, nil
}

func (r *StkPushPaymentRequest) Build(args STKPushArgs) (Payload, error) {
	if err := r.requireMerchant(); err != nil {
		return nil, err
	}
	if err := base.RequireFields(r.family,
		base.Field{Name: "account_reference", Value: args.AccountReference},
		base.Field{Name: "amount", Value: args.Amount},
		base.Field{Name: "recipient", Value: args.Recipient},
	); err != nil {
		return nil, err
	}

	password, timestamp := r.credentials()
	return Payload{
		"BusinessShortCode": r.shortcode,
		"Password":          password,
		"Timestamp":         timestamp,
		"TransactionType":   CustomerBuyGoodsOnline.String(),
		"Amount":            args.Amount,
		"PartyA":            args.Recipient,
		"PartyB":            r.shortcode,
		"PhoneNumber":       args.Recipient,
		"CallBackURL":       r.callbackURL,
		"AccountReference":  args.AccountReference,
		"TransactionDesc":   args.TransactionDescription,
	}, nil
}

func (r *StkPushPaymentRequest) Execute(ctx context.Context, args STKPushArgs) (*base.HTTPResponse, error) {
	payload, err := r.Build(args)
	if err != nil {
		return nil, err
	}
	return r.submit(ctx, payload)
}

// StkPushStatusQueryRequest asks Daraja for the outcome of an STK push
type StkPushStatusQueryRequest struct {
	stkRequest
}

var _ Builder[STKPushStatusArgs] = (*StkPushStatusQueryRequest)(nil)

func NewStkPushStatusQueryRequest(cfg config.DarajaCfg, cred Credentials, opts ...Option) (*StkPushStatusQueryRequest, error) {
	r, err := newSTKRequest(provider.FamilySTKPushQuery, cfg.STKPushQuery.URL, cfg, cred, opts)
	if err != nil {
		return nil, err
	}
	return &StkPushStatusQueryRequest{stkRequest: r}, nil
}

func (r *StkPushStatusQueryRequest) Build(args STKPushStatusArgs) (Payload, error) {
	if err := r.requireMerchant(); err != nil {
		return nil, err
	}
	if err := base.RequireFields(r.family,
		base.Field{Name: "checkout_request_id", Value: args.CheckoutRequestID},
	); err != nil {
		return nil, err
	}

	password, timestamp := r.credentials()
	return Payload{
		"BusinessShortCode": r.shortcode,
		"Password":          password,
		"Timestamp":         timestamp,
		"CheckoutRequestID": args.CheckoutRequestID,
	}, nil
}

func (r *StkPushStatusQueryRequest) Execute(ctx context.Context, args STKPushStatusArgs) (*base.HTTPResponse, error) {
	payload, err := r.Build(args)
	if err != nil {
		return nil, err
	}
	return r.submit(ctx, payload)
}
