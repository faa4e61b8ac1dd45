package base

import (
	"regexp"
	"strings"
)

var (
	wordBoundary    = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	acronymBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// CamelToSnake converts a Daraja field name to snake case.
// "OriginatorConversationID" -> "originator_conversation_id",
// "B2CRecipientIsRegisteredCustomer" -> "b2_c_recipient_is_registered_customer".
func CamelToSnake(s string) string {
	s = wordBoundary.ReplaceAllString(s, "${1}_${2}")
	s = acronymBoundary.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(s)
}

// NormalizeKeys returns a copy of m with every key passed through CamelToSnake.
func NormalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[CamelToSnake(k)] = v
	}
	return out
}
