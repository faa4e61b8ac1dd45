package mpesa

import (
	"encoding/base64"
	"fmt"
	"time"
)

// TimestampLayout is the YYYYMMDDHHMMSS form Daraja expects.
const TimestampLayout = "20060102150405"

// Clock produces timestamps and STK passwords in the provider time zone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock loads the IANA zone used for every timestamp
func NewClock(timezone string) (*Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Clock{loc: loc, now: time.Now}, nil
}

// WithNow returns a copy of c reading the time from now
func (c *Clock) WithNow(now func() time.Time) *Clock {
	cp := *c
	cp.now = now
	return &cp
}

// Timestamp returns the current time as a 14 digit string.
func (c *Clock) Timestamp() string {
	return c.now().In(c.loc).Format(TimestampLayout)
}

// Password derives the STK password from a fresh timestamp. Two calls a
// second apart return different passwords.
func (c *Clock) Password(passkey, shortcode string) string {
	return stkPassword(shortcode, passkey, c.Timestamp())
}

func stkPassword(shortcode, passkey, timestamp string) string {
	return base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
}
