package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "https://sandbox.safaricom.co.ke/oauth/v1/generate?grant_type=client_credentials", cfg.Daraja.OAuthURL)
	assert.Equal(t, 2*time.Second, cfg.Daraja.Timeout)
	assert.Equal(t, "Africa/Nairobi", cfg.Daraja.Timezone)
	assert.Equal(t, "your-security-credential", cfg.Daraja.SecurityCredential)
	assert.Equal(t, "https://mydomain.ext/b2c-callback-url", cfg.Daraja.B2C.CallbackURL)
	assert.Equal(t, "https://mydomain.ext/b2c-queue-timeout-url", cfg.Daraja.B2C.QueueTimeoutURL)
	assert.Equal(t, "https://mydomain.ext/stk-push-callback-url", cfg.Daraja.STKPush.CallbackURL)
	assert.Empty(t, cfg.Daraja.STKPushQuery.CallbackURL)
	assert.Empty(t, cfg.DB.DSN)
	assert.Equal(t, "daraja:callbacks", cfg.Redis.ChannelPrefix)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv(KeyB2CURL, "http://localhost:9000/b2c")
	t.Setenv(KeyReversalCallbackURL, "https://example.test/reversal")
	t.Setenv(KeySecurityCredential, "secret-credential")
	t.Setenv(KeyTimeout, "5s")
	t.Setenv(KeyTimezone, "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/b2c", cfg.Daraja.B2C.URL)
	assert.Equal(t, "https://example.test/reversal", cfg.Daraja.Reversal.CallbackURL)
	assert.Equal(t, "https://mydomain.ext/reversal-queue-timeout-url", cfg.Daraja.Reversal.QueueTimeoutURL)
	assert.Equal(t, "secret-credential", cfg.Daraja.SecurityCredential)
	assert.Equal(t, 5*time.Second, cfg.Daraja.Timeout)
	assert.Equal(t, "UTC", cfg.Daraja.Timezone)
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	t.Setenv(KeyTimezone, "Mars/Olympus_Mons")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeyTimezone)
}

func TestLoadRejectsZeroTimeout(t *testing.T) {
	t.Setenv(KeyTimeout, "0s")

	_, err := Load()
	require.Error(t, err)
}
