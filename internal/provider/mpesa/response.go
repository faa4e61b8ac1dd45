package mpesa

import (
	"fmt"
	"strings"

	"daraja/internal/provider"
	"daraja/internal/provider/base"

	"github.com/rs/zerolog"
)

// responseLayout describes how one family reads a synchronous Daraja reply.
// Each key list is tried in order and the first present key wins.
type responseLayout struct {
	description []string
	requestID   []string
	code        []string
	// firstNonEmpty picks the first description with a non-empty value
	// instead of the first present key.
	firstNonEmpty bool
	success       string
	failure       string
}

var (
	originatorKeys = responseLayout{
		description: []string{"ResponseDescription", "errorMessage"},
		requestID:   []string{"OriginatorConversationID", "requestId"},
		code:        []string{"ResponseCode", "errorCode"},
	}
	merchantKeys = responseLayout{
		description:   []string{"ResultDesc", "ResponseDescription", "errorMessage"},
		requestID:     []string{"MerchantRequestID", "requestId"},
		code:          []string{"ResultCode", "ResponseCode", "errorCode"},
		firstNonEmpty: true,
	}
)

func withTemplates(s responseLayout, success, failure string) responseLayout {
	s.success, s.failure = success, failure
	return s
}

var responseLayouts = map[provider.Family]responseLayout{
	provider.FamilySTKPush: withTemplates(merchantKeys,
		"STK push payment request: {id}, initiated. {desc}.",
		"STK push payment request: {id}, failed. {desc}."),
	provider.FamilySTKPushQuery: withTemplates(merchantKeys,
		"STK push status query request: {id} processed successfully. {desc}.",
		"STK push status query request: {id} failed. {desc}."),
	provider.FamilyB2C: withTemplates(originatorKeys,
		"B2C payment request: {id}, initiated successfully. {desc}.",
		"B2C payment request: {id}, initiation failed. {desc}."),
	provider.FamilyReversal: withTemplates(originatorKeys,
		"Reversal request: {id}, initiated successfully with description: {desc}.",
		"Reversal request: {id}, initiation failed with description: {desc}."),
	provider.FamilyTransactionStatus: withTemplates(originatorKeys,
		"Transaction status query: {id}, initiated successfully. {desc}.",
		"Transaction status query: {id}, failed. {desc}."),
	provider.FamilyC2BRegister: withTemplates(originatorKeys,
		"C2B URL registration: {id}, registered successfully. {desc}.",
		"C2B URL registration: {id}, failed. {desc}."),
}

// ResponseParser reads the synchronous reply to an Execute call. Every field
// is fixed at construction.
type ResponseParser struct {
	family      provider.Family
	layout      responseLayout
	logger      zerolog.Logger
	body        map[string]any
	description string
	requestID   string
	code        any
}

// NewResponseParser decodes resp for family. An empty body yields
// provider.ErrNoResponse; a body missing every variant of a required key
// yields provider.ErrMalformedPayload.
func NewResponseParser(family provider.Family, resp *base.HTTPResponse, logger zerolog.Logger) (*ResponseParser, error) {
	layout, ok := responseLayouts[family]
	if !ok {
		return nil, &provider.ProviderError{
			Code:    provider.ErrFamilyNotRegistered,
			Message: fmt.Sprintf("no response parser for %s", family),
		}
	}
	if resp == nil {
		return nil, provider.ErrNoResponse
	}

	body, err := base.Preprocess(resp, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", provider.ErrMalformedPayload, family, err)
	}
	if body == nil {
		return nil, provider.ErrNoResponse
	}

	p := &ResponseParser{family: family, layout: layout, logger: logger, body: body}

	desc, ok := lookup(body, layout.description, layout.firstNonEmpty)
	if !ok {
		return nil, missingKey(family, layout.description)
	}
	id, ok := lookup(body, layout.requestID, false)
	if !ok {
		return nil, missingKey(family, layout.requestID)
	}
	code, ok := lookup(body, layout.code, false)
	if !ok {
		return nil, missingKey(family, layout.code)
	}

	p.description = stringify(desc)
	p.requestID = stringify(id)
	p.code = code
	return p, nil
}

func NewStkPushPaymentResponseParser(resp *base.HTTPResponse, logger zerolog.Logger) (*ResponseParser, error) {
	return NewResponseParser(provider.FamilySTKPush, resp, logger)
}

func NewStkPushStatusQueryResponseParser(resp *base.HTTPResponse, logger zerolog.Logger) (*ResponseParser, error) {
	return NewResponseParser(provider.FamilySTKPushQuery, resp, logger)
}

func NewB2CPaymentResponseParser(resp *base.HTTPResponse, logger zerolog.Logger) (*ResponseParser, error) {
	return NewResponseParser(provider.FamilyB2C, resp, logger)
}

func NewReversalResponseParser(resp *base.HTTPResponse, logger zerolog.Logger) (*ResponseParser, error) {
	return NewResponseParser(provider.FamilyReversal, resp, logger)
}

func NewTransactionStatusQueryResponseParser(resp *base.HTTPResponse, logger zerolog.Logger) (*ResponseParser, error) {
	return NewResponseParser(provider.FamilyTransactionStatus, resp, logger)
}

func NewC2BRegisterURLResponseParser(resp *base.HTTPResponse, logger zerolog.Logger) (*ResponseParser, error) {
	return NewResponseParser(provider.FamilyC2BRegister, resp, logger)
}

// Success reports whether the reply code is the number 0
func (p *ResponseParser) Success() bool { return isZeroCode(p.code) }

func (p *ResponseParser) Description() string { return p.description }

func (p *ResponseParser) RequestID() string { return p.requestID }

// Parse logs the outcome and returns the body with snake_case keys.
// A failure code is still a parsed reply, never an error.
func (p *ResponseParser) Parse() map[string]any {
	if p.Success() {
		p.logger.Info().Str("family", string(p.family)).Msg(render(p.layout.success, p.requestID, p.description))
	} else {
		p.logger.Error().Str("family", string(p.family)).Msg(render(p.layout.failure, p.requestID, p.description))
	}
	return base.NormalizeKeys(p.body)
}

func lookup(body map[string]any, keys []string, nonEmpty bool) (any, bool) {
	var first any
	found := false
	for _, k := range keys {
		v, ok := body[k]
		if !ok {
			continue
		}
		if !nonEmpty || stringify(v) != "" {
			return v, true
		}
		if !found {
			first, found = v, true
		}
	}
	return first, found
}

func missingKey(family provider.Family, keys []string) error {
	return fmt.Errorf("%w: %s: none of %s present", provider.ErrMalformedPayload, family, strings.Join(keys, ", "))
}

// isZeroCode is true only for a numeric zero. The string "0" is not success.
func isZeroCode(v any) bool {
	switch n := v.(type) {
	case float64:
		return n == 0
	case int:
		return n == 0
	case int64:
		return n == 0
	}
	return false
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	}
	return fmt.Sprint(v)
}

func render(tmpl, id, desc string) string {
	return strings.NewReplacer("{id}", id, "{desc}", desc).Replace(tmpl)
}
