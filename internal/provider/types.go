package provider

// Family identifies one Daraja operation. Request builders, response parsers
// and callback parsers are selected per family.
type Family string

const (
	FamilySTKPush           Family = "stk_push"
	FamilySTKPushQuery      Family = "stk_push_query"
	FamilyB2C               Family = "b2c"
	FamilyReversal          Family = "reversal"
	FamilyTransactionStatus Family = "transaction_status"
	FamilyC2BRegister       Family = "c2b_register"
	FamilyC2B               Family = "c2b"
)

// Families lists every operation family in a stable order.
func Families() []Family {
	return []Family{
		FamilySTKPush,
		FamilySTKPushQuery,
		FamilyB2C,
		FamilyReversal,
		FamilyTransactionStatus,
		FamilyC2BRegister,
		FamilyC2B,
	}
}

// ParsedResult is the uniform outcome of a provider callback.
// Data is set only when the provider reported success.
type ParsedResult struct {
	Description   string         `json:"description"`
	Success       bool           `json:"success"`
	TransactionID string         `json:"transaction_id"`
	Data          map[string]any `json:"data,omitempty"`
}

// CallbackParser turns one decoded webhook body into a ParsedResult.
type CallbackParser interface {
	Parse() ParsedResult
}

// CallbackParserFunc builds a parser for a raw webhook body.
type CallbackParserFunc func(body []byte) (CallbackParser, error)
