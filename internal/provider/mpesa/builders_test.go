package mpesa

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"daraja/internal/config"
	"daraja/internal/provider"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStkPushPaymentRequestBuild(t *testing.T) {
	cfg := config.Default().Daraja
	req, err := NewStkPushPaymentRequest(cfg, testCred, WithClock(fixedClock(t)))
	require.NoError(t, err)

	cases := []STKPushArgs{
		{AccountReference: "some-ref", Amount: "100", Recipient: "254712365478", TransactionDescription: "Request payment for airtime purchase."},
		{AccountReference: "some-ref", Amount: "789", Recipient: "254787654321", TransactionDescription: "Request payment to process send money request."},
	}
	for _, args := range cases {
		payload, err := req.Build(args)
		require.NoError(t, err)

		assert.Equal(t, Payload{
			"BusinessShortCode": "174379",
			"Password":          base64.StdEncoding.EncodeToString([]byte("174379" + testCred.Passkey + "20191219102115")),
			"Timestamp":         "20191219102115",
			"TransactionType":   "CustomerBuyGoodsOnline",
			"Amount":            args.Amount,
			"PartyA":            args.Recipient,
			"PartyB":            "174379",
			"PhoneNumber":       args.Recipient,
			"CallBackURL":       "https://mydomain.ext/stk-push-callback-url",
			"AccountReference":  args.AccountReference,
			"TransactionDesc":   args.TransactionDescription,
		}, payload)
	}
}

func TestStkPushPasswordMatchesTimestamp(t *testing.T) {
	req, err := NewStkPushPaymentRequest(config.Default().Daraja, testCred)
	require.NoError(t, err)

	payload, err := req.Build(STKPushArgs{AccountReference: "ref", Amount: "1", Recipient: "254708374149"})
	require.NoError(t, err)

	ts := payload["Timestamp"].(string)
	require.Len(t, ts, 14)
	decoded, err := base64.StdEncoding.DecodeString(payload["Password"].(string))
	require.NoError(t, err)
	assert.Equal(t, "174379"+testCred.Passkey+ts, string(decoded))
}

func TestStkPushRequiresArguments(t *testing.T) {
	req, err := NewStkPushPaymentRequest(config.Default().Daraja, testCred, WithClock(fixedClock(t)))
	require.NoError(t, err)

	_, err = req.Build(STKPushArgs{AccountReference: "ref", Amount: "1"})
	var perr *provider.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, provider.ErrMissingField, perr.Code)
	assert.Contains(t, perr.Message, "recipient")
}

func TestStkPushRequiresPasskey(t *testing.T) {
	cred := testCred
	cred.Passkey = ""
	req, err := NewStkPushPaymentRequest(config.Default().Daraja, cred, WithClock(fixedClock(t)))
	require.NoError(t, err)

	_, err = req.Build(STKPushArgs{AccountReference: "ref", Amount: "1", Recipient: "254708374149"})
	assert.Error(t, err)
}

func TestNewStkPushRejectsUnknownZone(t *testing.T) {
	cfg := config.Default().Daraja
	cfg.Timezone = "Nowhere/Special"

	_, err := NewStkPushPaymentRequest(cfg, testCred)
	assert.Error(t, err)
}

func TestStkPushStatusQueryRequestBuild(t *testing.T) {
	req, err := NewStkPushStatusQueryRequest(config.Default().Daraja, testCred, WithClock(fixedClock(t)))
	require.NoError(t, err)

	payload, err := req.Build(STKPushStatusArgs{CheckoutRequestID: "ws_CO_191220191020363925"})
	require.NoError(t, err)
	assert.Equal(t, Payload{
		"BusinessShortCode": "174379",
		"Password":          base64.StdEncoding.EncodeToString([]byte("174379" + testCred.Passkey + "20191219102115")),
		"Timestamp":         "20191219102115",
		"CheckoutRequestID": "ws_CO_191220191020363925",
	}, payload)
}

func TestB2CPaymentRequestBuild(t *testing.T) {
	req := NewB2CPaymentRequest(config.Default().Daraja, testCred)

	for _, cmd := range []CommandID{BusinessPayment, PromotionPayment, SalaryPayment} {
		args := B2CArgs{
			Amount:    "300",
			CommandID: cmd,
			Initiator: "test-api",
			Occasion:  "Salary",
			PartyA:    "600000",
			PartyB:    "254708374149",
			Remarks:   "Test remarks",
		}
		payload, err := req.Build(args)
		require.NoError(t, err)

		assert.Equal(t, Payload{
			"InitiatorName":      "test-api",
			"SecurityCredential": "your-security-credential",
			"CommandID":          string(cmd),
			"Amount":             "300",
			"PartyA":             "600000",
			"PartyB":             "254708374149",
			"Remarks":            "Test remarks",
			"QueueTimeOutURL":    "https://mydomain.ext/b2c-queue-timeout-url",
			"ResultURL":          "https://mydomain.ext/b2c-callback-url",
			"Occasion":           "Salary",
		}, payload)

		again, err := req.Build(args)
		require.NoError(t, err)
		assert.Equal(t, payload, again)
	}
}

func TestB2CRejectsUnknownCommand(t *testing.T) {
	req := NewB2CPaymentRequest(config.Default().Daraja, testCred)

	for _, cmd := range []CommandID{"AccountBalance", TransactionReversal, TransactionStatusQuery} {
		t.Run(string(cmd), func(t *testing.T) {
			payload, err := req.Build(B2CArgs{Amount: "1", CommandID: cmd, Initiator: "i", PartyA: "a", PartyB: "b"})
			assert.Nil(t, payload)
			var perr *provider.ProviderError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, provider.ErrInvalidField, perr.Code)
			assert.Contains(t, perr.Message, "b2c: command_id")
		})
	}
}

func TestReversalRequestBuild(t *testing.T) {
	cfg := config.Default().Daraja
	cfg.SecurityCredential = "encrypted-credential"
	req := NewReversalRequest(cfg, testCred)

	payload, err := req.Build(ReversalArgs{
		Amount:        25.0,
		Initiator:     "test-api",
		Occasion:      "Erroneous transfer",
		ReceiverParty: "123456",
		Remarks:       "Test remarks",
		TransactionID: "QWEDF4MS007",
	})
	require.NoError(t, err)
	assert.Equal(t, Payload{
		"Initiator":              "test-api",
		"SecurityCredential":     "encrypted-credential",
		"CommandID":              "TransactionReversal",
		"TransactionID":          "QWEDF4MS007",
		"Amount":                 25.0,
		"ReceiverParty":          "123456",
		"ReceiverIdentifierType": "11",
		"ResultURL":              "https://mydomain.ext/reversal-callback-url",
		"QueueTimeOutURL":        "https://mydomain.ext/reversal-queue-timeout-url",
		"Remarks":                "Test remarks",
		"Occasion":               "Erroneous transfer",
	}, payload)
}

func TestReversalRejectsZeroAmount(t *testing.T) {
	req := NewReversalRequest(config.Default().Daraja, testCred)

	_, err := req.Build(ReversalArgs{Initiator: "i", ReceiverParty: "1", TransactionID: "X"})
	assert.Error(t, err)
}

func TestTransactionStatusQueryRequestBuild(t *testing.T) {
	req := NewTransactionStatusQueryRequest(config.Default().Daraja, testCred)

	cases := []struct {
		idType IdentifierType
		wire   string
	}{
		{MSISDN, "1"},
		{TillNumber, "2"},
		{OrgShortCode, "4"},
	}
	for _, tc := range cases {
		payload, err := req.Build(TransactionStatusArgs{
			IdentifierType: tc.idType,
			Initiator:      "test-api",
			Occasion:       "Tx oracle instruction",
			PartyA:         "123456",
			Remarks:        "Test remarks",
			TransactionID:  "QWEDF4MS007",
		})
		require.NoError(t, err)
		assert.Equal(t, Payload{
			"Initiator":          "test-api",
			"SecurityCredential": "your-security-credential",
			"CommandID":          "TransactionStatusQuery",
			"TransactionID":      "QWEDF4MS007",
			"PartyA":             "123456",
			"IdentifierType":     tc.wire,
			"ResultURL":          "https://mydomain.ext/transaction-status-callback-url",
			"QueueTimeOutURL":    "https://mydomain.ext/transaction-status-queue-timeout-url",
			"Remarks":            "Test remarks",
			"Occasion":           "Tx oracle instruction",
		}, payload)
	}
}

func TestTransactionStatusRejectsUnknownIdentifier(t *testing.T) {
	req := NewTransactionStatusQueryRequest(config.Default().Daraja, testCred)

	_, err := req.Build(TransactionStatusArgs{IdentifierType: "11", Initiator: "i", PartyA: "a", TransactionID: "X"})
	assert.Error(t, err)
}

func TestC2BRegisterURLRequestBuild(t *testing.T) {
	req := NewC2BRegisterURLRequest(config.Default().Daraja, testCred)

	payload, err := req.Build(C2BRegisterArgs{
		ResponseType:    C2BCompleted,
		ConfirmationURL: "https://mydomain.ext/confirmation",
		ValidationURL:   "https://mydomain.ext/validation",
	})
	require.NoError(t, err)
	assert.Equal(t, Payload{
		"ShortCode":       "174379",
		"ResponseType":    "Completed",
		"ConfirmationURL": "https://mydomain.ext/confirmation",
		"ValidationURL":   "https://mydomain.ext/validation",
	}, payload)
}

func TestExecutePostsWithBearerToken(t *testing.T) {
	f := newFakeDaraja(t)
	f.reply("/b2c", fixture(t, "b2c_response_success.json"))

	req := NewB2CPaymentRequest(f.cfg(), testCred, WithLogger(zerolog.Nop()))
	resp, err := req.Execute(context.Background(), B2CArgs{
		Amount: "10", CommandID: BusinessPayment, Initiator: "test-api",
		PartyA: "600000", PartyB: "254708374149", Remarks: "r", Occasion: "o",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, string(fixture(t, "b2c_response_success.json")), resp.String())

	reqs := f.recorded()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/oauth", reqs[0].Path)

	post := reqs[1]
	assert.Equal(t, http.MethodPost, post.Method)
	assert.Equal(t, "/b2c", post.Path)
	assert.Equal(t, "Bearer FF6C9WiPk46ShjYk2QqWajV95VaN", post.Header.Get("Authorization"))
	assert.Equal(t, "application/json", post.Header.Get("Content-Type"))
	assert.Equal(t, "BusinessPayment", post.Body["CommandID"])
	assert.Equal(t, "254708374149", post.Body["PartyB"])
}

func TestExecuteStopsOnInvalidArguments(t *testing.T) {
	f := newFakeDaraja(t)

	req := NewReversalRequest(f.cfg(), testCred, WithLogger(zerolog.Nop()))
	_, err := req.Execute(context.Background(), ReversalArgs{})
	require.Error(t, err)
	assert.Empty(t, f.recorded())
}

func TestExecuteStopsOnAuthFailure(t *testing.T) {
	f := newFakeDaraja(t)
	f.authStatus = http.StatusBadRequest
	f.authBody = fixture(t, "auth_failed.json")

	req, err := NewStkPushStatusQueryRequest(f.cfg(), testCred, WithLogger(zerolog.Nop()), WithClock(fixedClock(t)))
	require.NoError(t, err)

	_, err = req.Execute(context.Background(), STKPushStatusArgs{CheckoutRequestID: "ws_CO_1"})
	var aerr *provider.AuthenticationError
	require.True(t, errors.As(err, &aerr))
	assert.Len(t, f.recorded(), 1)
}
