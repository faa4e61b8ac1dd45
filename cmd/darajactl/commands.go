package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"daraja/internal/provider"
	"daraja/internal/provider/mpesa"

	"github.com/spf13/pflag"
)

// operations is the part of mpesa.Client the commands drive
type operations interface {
	Name() string
	SupportedOperations() []provider.Family
	AccessToken(ctx context.Context) (string, error)
	STKPush(ctx context.Context, args mpesa.STKPushArgs) (map[string]any, error)
	STKPushStatus(ctx context.Context, args mpesa.STKPushStatusArgs) (map[string]any, error)
	B2C(ctx context.Context, args mpesa.B2CArgs) (map[string]any, error)
	Reverse(ctx context.Context, args mpesa.ReversalArgs) (map[string]any, error)
	TransactionStatus(ctx context.Context, args mpesa.TransactionStatusArgs) (map[string]any, error)
	RegisterC2B(ctx context.Context, args mpesa.C2BRegisterArgs) (map[string]any, error)
}

var _ operations = (*mpesa.Client)(nil)

func run(ctx context.Context, ops operations, args []string, out io.Writer) error {
	if len(args) == 0 {
		usage(out)
		return fmt.Errorf("missing command")
	}

	name, rest := args[0], args[1:]
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(out)

	var call func() (any, error)

	switch name {
	case "token":
		call = func() (any, error) {
			token, err := ops.AccessToken(ctx)
			return map[string]any{"access_token": token}, err
		}

	case "ops":
		call = func() (any, error) {
			return map[string]any{"provider": ops.Name(), "operations": ops.SupportedOperations()}, nil
		}

	case "stk":
		var a mpesa.STKPushArgs
		fs.StringVar(&a.Amount, "amount", "", "amount to charge")
		fs.StringVar(&a.Recipient, "phone", "", "customer MSISDN, e.g. 2547XXXXXXXX")
		fs.StringVar(&a.AccountReference, "reference", "", "account reference shown to the customer")
		fs.StringVar(&a.TransactionDescription, "description", "", "transaction description")
		call = func() (any, error) { return ops.STKPush(ctx, a) }

	case "stk-status":
		var a mpesa.STKPushStatusArgs
		fs.StringVar(&a.CheckoutRequestID, "checkout-request-id", "", "CheckoutRequestID returned by stk")
		call = func() (any, error) { return ops.STKPushStatus(ctx, a) }

	case "b2c":
		var a mpesa.B2CArgs
		var command string
		fs.StringVar(&a.Amount, "amount", "", "amount to pay")
		fs.StringVar(&command, "command", string(mpesa.BusinessPayment), "BusinessPayment, PromotionPayment or SalaryPayment")
		fs.StringVar(&a.Initiator, "initiator", "", "initiator name")
		fs.StringVar(&a.PartyA, "party-a", "", "paying shortcode")
		fs.StringVar(&a.PartyB, "party-b", "", "receiving MSISDN")
		fs.StringVar(&a.Remarks, "remarks", "", "remarks")
		fs.StringVar(&a.Occasion, "occasion", "", "occasion")
		call = func() (any, error) {
			a.CommandID = mpesa.CommandID(command)
			return ops.B2C(ctx, a)
		}

	case "reverse":
		var a mpesa.ReversalArgs
		fs.Float64Var(&a.Amount, "amount", 0, "amount to reverse")
		fs.StringVar(&a.Initiator, "initiator", "", "initiator name")
		fs.StringVar(&a.ReceiverParty, "receiver", "", "receiving shortcode")
		fs.StringVar(&a.TransactionID, "transaction-id", "", "M-Pesa receipt to reverse")
		fs.StringVar(&a.Remarks, "remarks", "", "remarks")
		fs.StringVar(&a.Occasion, "occasion", "", "occasion")
		call = func() (any, error) { return ops.Reverse(ctx, a) }

	case "status":
		var a mpesa.TransactionStatusArgs
		var identifier string
		fs.StringVar(&identifier, "identifier-type", string(mpesa.OrgShortCode), "1 MSISDN, 2 till number, 4 shortcode")
		fs.StringVar(&a.Initiator, "initiator", "", "initiator name")
		fs.StringVar(&a.PartyA, "party-a", "", "querying party")
		fs.StringVar(&a.TransactionID, "transaction-id", "", "M-Pesa receipt to query")
		fs.StringVar(&a.Remarks, "remarks", "", "remarks")
		fs.StringVar(&a.Occasion, "occasion", "", "occasion")
		call = func() (any, error) {
			a.IdentifierType = mpesa.IdentifierType(identifier)
			return ops.TransactionStatus(ctx, a)
		}

	case "register-c2b":
		var a mpesa.C2BRegisterArgs
		var responseType string
		fs.StringVar(&responseType, "response-type", string(mpesa.C2BCompleted), "Completed or Cancelled")
		fs.StringVar(&a.ConfirmationURL, "confirmation-url", "", "confirmation URL")
		fs.StringVar(&a.ValidationURL, "validation-url", "", "validation URL")
		call = func() (any, error) {
			a.ResponseType = mpesa.C2BResponseType(responseType)
			return ops.RegisterC2B(ctx, a)
		}

	case "help", "-h", "--help":
		usage(out)
		return nil

	default:
		usage(out)
		return fmt.Errorf("unknown command %q", name)
	}

	if err := fs.Parse(rest); err != nil {
		return err
	}

	result, err := call()
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
