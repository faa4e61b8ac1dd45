package mpesa

import (
	"context"

	"daraja/internal/config"
	"daraja/internal/provider"
	"daraja/internal/provider/base"
)

// TransactionStatusArgs name the transaction and the party that owns it
type TransactionStatusArgs struct {
	IdentifierType IdentifierType
	Initiator      string
	Occasion       string
	PartyA         string
	Remarks        string
	TransactionID  string
}

// TransactionStatusQueryRequest asks for the status of any M-Pesa transaction.
// The answer arrives on the result URL.
type TransactionStatusQueryRequest struct {
	initiatorRequest
}

var _ Builder[TransactionStatusArgs] = (*TransactionStatusQueryRequest)(nil)

func NewTransactionStatusQueryRequest(cfg config.DarajaCfg, cred Credentials, opts ...Option) *TransactionStatusQueryRequest {
	return &TransactionStatusQueryRequest{newInitiatorRequest(provider.FamilyTransactionStatus, cfg.TransactionStatus, cfg, cred, opts)}
}

func (r *TransactionStatusQueryRequest) Build(args TransactionStatusArgs) (Payload, error) {
	if err := base.RequireFields(r.family,
		base.Field{Name: "initiator", Value: args.Initiator},
		base.Field{Name: "party_a", Value: args.PartyA},
		base.Field{Name: "transaction_id", Value: args.TransactionID},
	); err != nil {
		return nil, err
	}
	if err := base.RequireEnum(r.family, "identifier_type", args.IdentifierType); err != nil {
		return nil, err
	}

	return Payload{
		"Initiator":          args.Initiator,
		"SecurityCredential": r.securityCredential,
		"CommandID":          TransactionStatusQuery.String(),
		"TransactionID":      args.TransactionID,
		"PartyA":             args.PartyA,
		"IdentifierType":     args.IdentifierType.String(),
		"ResultURL":          r.resultURL,
		"QueueTimeOutURL":    r.queueTimeoutURL,
		"Remarks":            args.Remarks,
		"Occasion":           args.Occasion,
	}, nil
}

func (r *TransactionStatusQueryRequest) Execute(ctx context.Context, args TransactionStatusArgs) (*base.HTTPResponse, error) {
	payload, err := r.Build(args)
	if err != nil {
		return nil, err
	}
	return r.submit(ctx, payload)
}
