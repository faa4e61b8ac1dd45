package mpesa

import (
	"context"

	"daraja/internal/config"
	"daraja/internal/provider"
	"daraja/internal/provider/base"
)

// initiatorRequest is shared by the families run by an API initiator and
// answered on a result URL: B2C, reversal and transaction status.
type initiatorRequest struct {
	requestBuilder
	securityCredential string
	resultURL          string
	queueTimeoutURL    string
}

func newInitiatorRequest(family provider.Family, ep config.Endpoint, cfg config.DarajaCfg, cred Credentials, opts []Option) initiatorRequest {
	return initiatorRequest{
		requestBuilder:     newRequestBuilder(family, ep.URL, cfg, cred, newOptions(cfg, opts)),
		securityCredential: cfg.SecurityCredential,
		resultURL:          ep.CallbackURL,
		queueTimeoutURL:    ep.QueueTimeoutURL,
	}
}

// B2CArgs describe a business to customer payment
type B2CArgs struct {
	Amount    string
	CommandID CommandID
	Initiator string
	Occasion  string
	PartyA    string
	PartyB    string
	Remarks   string
}

// B2CPaymentRequest pays out from a shortcode to a customer
type B2CPaymentRequest struct {
	initiatorRequest
}

var _ Builder[B2CArgs] = (*B2CPaymentRequest)(nil)

func NewB2CPaymentRequest(cfg config.DarajaCfg, cred Credentials, opts ...Option) *B2CPaymentRequest {
	return &B2CPaymentRequest{newInitiatorRequest(provider.FamilyB2C, cfg.B2C, cfg, cred, opts)}
}

func (r *B2CPaymentRequest) Build(args B2CArgs) (Payload, error) {
	if err := base.RequireFields(r.family,
		base.Field{Name: "amount", Value: args.Amount},
		base.Field{Name: "initiator", Value: args.Initiator},
		base.Field{Name: "party_a", Value: args.PartyA},
		base.Field{Name: "party_b", Value: args.PartyB},
	); err != nil {
		return nil, err
	}
	if err := base.RequireEnum(r.family, "command_id", b2cCommand(args.CommandID)); err != nil {
		return nil, err
	}

	return Payload{
		"InitiatorName":      args.Initiator,
		"SecurityCredential": r.securityCredential,
		"CommandID":          args.CommandID.String(),
		"Amount":             args.Amount,
		"PartyA":             args.PartyA,
		"PartyB":             args.PartyB,
		"Remarks":            args.Remarks,
		"QueueTimeOutURL":    r.queueTimeoutURL,
		"ResultURL":          r.resultURL,
		"Occasion":           args.Occasion,
	}, nil
}

func (r *B2CPaymentRequest) Execute(ctx context.Context, args B2CArgs) (*base.HTTPResponse, error) {
	payload, err := r.Build(args)
	if err != nil {
		return nil, err
	}
	return r.submit(ctx, payload)
}
