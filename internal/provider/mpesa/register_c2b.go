package mpesa

import (
	"context"
	"encoding/json"
	"fmt"

	"daraja/internal/config"
	"daraja/internal/provider"
	"daraja/internal/provider/base"

	"github.com/rs/zerolog"
)

// C2BRegisterArgs are the URLs Daraja calls for customer initiated payments
type C2BRegisterArgs struct {
	ResponseType    C2BResponseType
	ConfirmationURL string
	ValidationURL   string
}

// C2BRegisterURLRequest registers confirmation and validation URLs for the shortcode
type C2BRegisterURLRequest struct {
	requestBuilder
	shortcode string
}

var _ Builder[C2BRegisterArgs] = (*C2BRegisterURLRequest)(nil)

func NewC2BRegisterURLRequest(cfg config.DarajaCfg, cred Credentials, opts ...Option) *C2BRegisterURLRequest {
	return &C2BRegisterURLRequest{
		requestBuilder: newRequestBuilder(provider.FamilyC2BRegister, cfg.C2BRegister.URL, cfg, cred, newOptions(cfg, opts)),
		shortcode:      cred.Shortcode,
	}
}

func (r *C2BRegisterURLRequest) Build(args C2BRegisterArgs) (Payload, error) {
	if err := base.RequireFields(r.family,
		base.Field{Name: "shortcode", Value: r.shortcode},
		base.Field{Name: "confirmation_url", Value: args.ConfirmationURL},
		base.Field{Name: "validation_url", Value: args.ValidationURL},
	); err != nil {
		return nil, err
	}
	if err := base.RequireEnum(r.family, "response_type", args.ResponseType); err != nil {
		return nil, err
	}

	return Payload{
		"ShortCode":       r.shortcode,
		"ResponseType":    args.ResponseType.String(),
		"ConfirmationURL": args.ConfirmationURL,
		"ValidationURL":   args.ValidationURL,
	}, nil
}

func (r *C2BRegisterURLRequest) Execute(ctx context.Context, args C2BRegisterArgs) (*base.HTTPResponse, error) {
	payload, err := r.Build(args)
	if err != nil {
		return nil, err
	}
	return r.submit(ctx, payload)
}

// C2BCallbackParser reads the flat confirmation body Daraja posts for a
// customer payment. A confirmation is always a completed payment.
type C2BCallbackParser struct {
	logger zerolog.Logger
	raw    []byte
	body   map[string]any
}

var _ provider.CallbackParser = (*C2BCallbackParser)(nil)

func NewC2BCallbackParser(body []byte, logger zerolog.Logger) (*C2BCallbackParser, error) {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("%w: c2b callback: %v", provider.ErrMalformedPayload, err)
	}
	if stringify(m["TransID"]) == "" {
		return nil, fmt.Errorf("%w: c2b callback: missing TransID", provider.ErrMalformedPayload)
	}
	return &C2BCallbackParser{logger: logger, raw: body, body: m}, nil
}

func (p *C2BCallbackParser) Parse() provider.ParsedResult {
	p.logger.Info().Str("family", string(provider.FamilyC2B)).Msgf("C2B callback request: %s", p.raw)
	return provider.ParsedResult{
		Description:   stringify(p.body["TransactionType"]),
		Success:       true,
		TransactionID: stringify(p.body["TransID"]),
		Data:          base.NormalizeKeys(p.body),
	}
}
