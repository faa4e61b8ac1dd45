package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"daraja/internal/provider"
	"daraja/internal/provider/mpesa"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu  sync.Mutex
	got []provider.Callback
	err error
}

func (s *memorySink) Record(_ context.Context, cb provider.Callback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, cb)
	return nil
}

func newMux(sinks ...Sink) http.Handler {
	reg := provider.NewRegistry(zerolog.Nop())
	mpesa.RegisterCallbackParsers(reg, zerolog.Nop())

	r := chi.NewRouter()
	r.Post("/callbacks/{family}", Callbacks(reg, sinks...))
	r.Get("/health", Health(reg))
	return r
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const stkCancelled = `{"Body":{"stkCallback":{"MerchantRequestID":"29115-34620561-1","CheckoutRequestID":"ws_CO_191220191020363925","ResultCode":1032,"ResultDesc":"Request cancelled by user."}}}`

func TestCallbacksRecordsParsedResult(t *testing.T) {
	sink := &memorySink{}
	rec := post(newMux(sink), "/callbacks/stk_push", stkCancelled)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ResultCode":0,"ResultDesc":"Accepted"}`, rec.Body.String())

	require.Len(t, sink.got, 1)
	cb := sink.got[0]
	assert.Equal(t, provider.FamilySTKPush, cb.Family)
	assert.False(t, cb.Result.Success)
	assert.Equal(t, "29115-34620561-1", cb.Result.TransactionID)
	assert.JSONEq(t, stkCancelled, string(cb.Raw))
	assert.False(t, cb.ReceivedAt.IsZero())
}

func TestCallbacksFanOutToEverySink(t *testing.T) {
	a, b := &memorySink{}, &memorySink{}
	body := `{"Result":{"ResultCode":0,"ResultDesc":"ok","TransactionID":"NLJ41HAY6Q"}}`

	rec := post(newMux(a, b), "/callbacks/b2c", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
}

func TestCallbacksUnknownFamily(t *testing.T) {
	rec := post(newMux(), "/callbacks/balance", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCallbacksMalformedBody(t *testing.T) {
	sink := &memorySink{}
	rec := post(newMux(sink), "/callbacks/reversal", `{"Body":{}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, sink.got)
}

func TestCallbacksRejectsOversizedBody(t *testing.T) {
	sink := &memorySink{}
	body := `{"TransID":"` + strings.Repeat("x", maxCallbackBody) + `"}`

	rec := post(newMux(sink), "/callbacks/c2b", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Empty(t, sink.got)
}

func TestCallbacksSinkFailure(t *testing.T) {
	sink := &memorySink{err: errors.New("connection refused")}
	rec := post(newMux(sink), "/callbacks/stk_push", stkCancelled)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthListsFamilies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	newMux().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status   string   `json:"status"`
		Families []string `json:"families"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, []string{"b2c", "c2b", "reversal", "stk_push", "transaction_status"}, body.Families)
}
