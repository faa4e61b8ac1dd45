package mpesa

import (
	"daraja/internal/provider"

	"github.com/rs/zerolog"
)

// RegisterCallbackParsers wires every M-Pesa callback shape into reg
func RegisterCallbackParsers(reg *provider.Registry, logger zerolog.Logger) {
	reg.Register(provider.FamilySTKPush, adapt(NewStkPushCallbackParser, logger))
	reg.Register(provider.FamilyB2C, adapt(NewB2CCallbackParser, logger))
	reg.Register(provider.FamilyReversal, adapt(NewReversalCallbackParser, logger))
	reg.Register(provider.FamilyTransactionStatus, adapt(NewTransactionStatusCallbackParser, logger))
	reg.Register(provider.FamilyC2B, adapt(NewC2BCallbackParser, logger))
}

// adapt keeps a failed constructor from leaking a typed nil parser
func adapt[P provider.CallbackParser](fn func([]byte, zerolog.Logger) (P, error), logger zerolog.Logger) provider.CallbackParserFunc {
	return func(body []byte) (provider.CallbackParser, error) {
		p, err := fn(body, logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}
