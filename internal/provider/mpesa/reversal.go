package mpesa

import (
	"context"

	"daraja/internal/config"
	"daraja/internal/provider"
	"daraja/internal/provider/base"
)

// ReversalArgs identify the completed transaction to reverse
type ReversalArgs struct {
	Amount        float64
	Initiator     string
	Occasion      string
	ReceiverParty string
	Remarks       string
	TransactionID string
}

// ReversalRequest reverses a completed M-Pesa transaction
type ReversalRequest struct {
	initiatorRequest
}

var _ Builder[ReversalArgs] = (*ReversalRequest)(nil)

func NewReversalRequest(cfg config.DarajaCfg, cred Credentials, opts ...Option) *ReversalRequest {
	return &ReversalRequest{newInitiatorRequest(provider.FamilyReversal, cfg.Reversal, cfg, cred, opts)}
}

func (r *ReversalRequest) Build(args ReversalArgs) (Payload, error) {
	if err := base.RequireFields(r.family,
		base.Field{Name: "initiator", Value: args.Initiator},
		base.Field{Name: "receiver_party", Value: args.ReceiverParty},
		base.Field{Name: "transaction_id", Value: args.TransactionID},
	); err != nil {
		return nil, err
	}
	if err := base.RequirePositive(r.family, "amount", args.Amount); err != nil {
		return nil, err
	}

	return Payload{
		"Initiator":              args.Initiator,
		"SecurityCredential":     r.securityCredential,
		"CommandID":              TransactionReversal.String(),
		"TransactionID":          args.TransactionID,
		"Amount":                 args.Amount,
		"ReceiverParty":          args.ReceiverParty,
		"ReceiverIdentifierType": reversalReceiverIdentifierType,
		"ResultURL":              r.resultURL,
		"QueueTimeOutURL":        r.queueTimeoutURL,
		"Remarks":                args.Remarks,
		"Occasion":               args.Occasion,
	}, nil
}

func (r *ReversalRequest) Execute(ctx context.Context, args ReversalArgs) (*base.HTTPResponse, error) {
	payload, err := r.Build(args)
	if err != nil {
		return nil, err
	}
	return r.submit(ctx, payload)
}
