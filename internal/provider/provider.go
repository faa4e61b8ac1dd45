package provider

import (
	"encoding/json"
	"time"
)

// Provider describes a payment provider client
type Provider interface {
	Name() string
	SupportedOperations() []Family
}

// Callback is one delivered and parsed provider callback, as handed to sinks.
type Callback struct {
	Family     Family          `json:"family"`
	Result     ParsedResult    `json:"result"`
	Raw        json.RawMessage `json:"raw"`
	ReceivedAt time.Time       `json:"received_at"`
}
