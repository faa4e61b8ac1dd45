package mpesa

import (
	"bytes"
	"encoding/json"
	"fmt"

	"daraja/internal/provider"
	"daraja/internal/provider/base"

	"github.com/rs/zerolog"
)

// parameter is one entry of ResultParameter (Key/Value) or
// CallbackMetadata.Item (Name/Value).
type parameter struct {
	Key   string `json:"Key"`
	Name  string `json:"Name"`
	Value any    `json:"Value"`
}

func (p parameter) key() string {
	if p.Key != "" {
		return p.Key
	}
	return p.Name
}

// parameterList accepts both a list and a lone object. Daraja sends the
// latter when there is a single parameter.
type parameterList []parameter

func (l *parameterList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var p parameter
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		*l = parameterList{p}
		return nil
	}

	var ps []parameter
	if err := json.Unmarshal(b, &ps); err != nil {
		return err
	}
	*l = ps
	return nil
}

// data maps normalized keys to values. Entries without a key are dropped.
func (l parameterList) data() map[string]any {
	out := make(map[string]any, len(l))
	for _, p := range l {
		k := p.key()
		if k == "" {
			continue
		}
		out[base.CamelToSnake(k)] = p.Value
	}
	return out
}

type resultEnvelope struct {
	Result *struct {
		ResultCode       any    `json:"ResultCode"`
		ResultDesc       string `json:"ResultDesc"`
		TransactionID    string `json:"TransactionID"`
		ResultParameters *struct {
			ResultParameter parameterList `json:"ResultParameter"`
		} `json:"ResultParameters"`
	} `json:"Result"`
}

type stkEnvelope struct {
	Body *struct {
		StkCallback *struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			ResultCode        any    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  *struct {
				Item parameterList `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

type callbackTemplates struct {
	success string
	failure string
}

var callbackLayouts = map[provider.Family]callbackTemplates{
	provider.FamilySTKPush: {
		success: "STK push callback request: {id} processed successfully. {desc}.",
		failure: "STK push callback request: {id} failed. {desc}.",
	},
	provider.FamilyB2C: {
		success: "B2C transaction: {id} processed successfully.",
		failure: "B2C transaction: {id} failed with response: {desc}.",
	},
	provider.FamilyReversal: {
		success: "Reversal request for transaction: {id} processed successfully.",
		failure: "Reversal request: {id}, failed with description: {desc}.",
	},
	provider.FamilyTransactionStatus: {
		success: "Transaction status query: {id}, processed successfully. {desc}.",
		failure: "Transaction status query: {id}, failed. {desc}.",
	},
}

// CallbackParser reads an asynchronous result delivered to a callback URL.
type CallbackParser struct {
	family        provider.Family
	templates     callbackTemplates
	logger        zerolog.Logger
	code          any
	description   string
	transactionID string
	params        parameterList
}

var _ provider.CallbackParser = (*CallbackParser)(nil)

// newResultCallbackParser handles the Result rooted shape shared by B2C,
// reversal and transaction status callbacks.
func newResultCallbackParser(family provider.Family, body []byte, logger zerolog.Logger) (*CallbackParser, error) {
	var env resultEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %s callback: %v", provider.ErrMalformedPayload, family, err)
	}
	r := env.Result
	if r == nil {
		return nil, fmt.Errorf("%w: %s callback: missing Result", provider.ErrMalformedPayload, family)
	}
	if r.ResultCode == nil {
		return nil, fmt.Errorf("%w: %s callback: missing ResultCode", provider.ErrMalformedPayload, family)
	}

	p := &CallbackParser{
		family:        family,
		templates:     callbackLayouts[family],
		logger:        logger,
		code:          r.ResultCode,
		description:   r.ResultDesc,
		transactionID: r.TransactionID,
	}
	if r.ResultParameters != nil {
		p.params = r.ResultParameters.ResultParameter
	}
	return p, nil
}

func NewB2CCallbackParser(body []byte, logger zerolog.Logger) (*CallbackParser, error) {
	return newResultCallbackParser(provider.FamilyB2C, body, logger)
}

func NewReversalCallbackParser(body []byte, logger zerolog.Logger) (*CallbackParser, error) {
	return newResultCallbackParser(provider.FamilyReversal, body, logger)
}

func NewTransactionStatusCallbackParser(body []byte, logger zerolog.Logger) (*CallbackParser, error) {
	return newResultCallbackParser(provider.FamilyTransactionStatus, body, logger)
}

// NewStkPushCallbackParser handles Body.stkCallback. The transaction id
// reported is the MerchantRequestID.
func NewStkPushCallbackParser(body []byte, logger zerolog.Logger) (*CallbackParser, error) {
	family := provider.FamilySTKPush

	var env stkEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %s callback: %v", provider.ErrMalformedPayload, family, err)
	}
	if env.Body == nil || env.Body.StkCallback == nil {
		return nil, fmt.Errorf("%w: %s callback: missing Body.stkCallback", provider.ErrMalformedPayload, family)
	}
	cb := env.Body.StkCallback
	if cb.ResultCode == nil {
		return nil, fmt.Errorf("%w: %s callback: missing ResultCode", provider.ErrMalformedPayload, family)
	}

	p := &CallbackParser{
		family:        family,
		templates:     callbackLayouts[family],
		logger:        logger,
		code:          cb.ResultCode,
		description:   cb.ResultDesc,
		transactionID: cb.MerchantRequestID,
	}
	if cb.CallbackMetadata != nil {
		p.params = cb.CallbackMetadata.Item
	}
	return p, nil
}

// Parse logs the outcome. Data is attached only on success and is empty,
// not nil, when the provider sent no parameters.
func (p *CallbackParser) Parse() provider.ParsedResult {
	out := provider.ParsedResult{
		Description:   p.description,
		Success:       isZeroCode(p.code),
		TransactionID: p.transactionID,
	}

	if !out.Success {
		p.logger.Error().Str("family", string(p.family)).Msg(render(p.templates.failure, p.transactionID, p.description))
		return out
	}

	p.logger.Info().Str("family", string(p.family)).Msg(render(p.templates.success, p.transactionID, p.description))
	out.Data = p.params.data()
	return out
}
