package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"daraja/internal/provider"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// maxCallbackBody bounds a single callback delivery
const maxCallbackBody = 1 << 20

// Sink records a parsed callback. A failing sink makes the delivery fail so
// Daraja retries it.
type Sink interface {
	Record(ctx context.Context, cb provider.Callback) error
}

// accepted is the acknowledgement Daraja expects from a callback URL
var accepted = map[string]any{"ResultCode": 0, "ResultDesc": "Accepted"}

// Callbacks parses POST /callbacks/{family} with the registered parser and
// hands the result to every sink.
func Callbacks(reg *provider.Registry, sinks ...Sink) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())
		family := provider.Family(chi.URLParam(r, "family"))

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCallbackBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "unreadable body", http.StatusBadRequest)
			return
		}

		parser, err := reg.Parser(family, body)
		if err != nil {
			var perr *provider.ProviderError
			if errors.As(err, &perr) && perr.Code == provider.ErrFamilyNotRegistered {
				http.Error(w, "unknown callback family", http.StatusNotFound)
				return
			}
			logger.Warn().Err(err).Str("family", string(family)).Msg("rejected callback")
			http.Error(w, "bad payload", http.StatusBadRequest)
			return
		}

		cb := provider.Callback{
			Family:     family,
			Result:     parser.Parse(),
			Raw:        json.RawMessage(body),
			ReceivedAt: time.Now().UTC(),
		}

		for _, sink := range sinks {
			if err := sink.Record(r.Context(), cb); err != nil {
				logger.Error().Err(err).
					Str("family", string(family)).
					Str("transaction_id", cb.Result.TransactionID).
					Msg("record callback failed")
				http.Error(w, "record failed", http.StatusInternalServerError)
				return
			}
		}

		writeJSON(w, http.StatusOK, accepted)
	}
}

// Health reports liveness and the families callbacks are accepted for
func Health(reg *provider.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"families": reg.Families(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
