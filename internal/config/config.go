package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment keys. Operation URLs, callback URLs and the security credential
// keep the names operators already export for the Daraja sandbox.
const (
	KeyAppEnv   = "APP_ENV"
	KeyAppPort  = "APP_PORT"
	KeyLogLevel = "LOG_LEVEL"

	KeyCallbackToken = "CALLBACK_TOKEN"

	KeyOAuthURL = "OAUTH_URL"
	KeyTimeout  = "DARAJA_TIMEOUT"
	KeyTimezone = "TIMEZONE"

	KeySecurityCredential = "SECURITY_CREDENTIAL"

	KeySTKPushInitiationURL  = "STK_PUSH_INITIATION_URL"
	KeySTKPushStatusQueryURL = "STK_PUSH_STATUS_QUERY_URL"
	KeySTKPushCallbackURL    = "STK_PUSH_CALLBACK_URL"

	KeyB2CURL             = "B2C_URL"
	KeyB2CCallbackURL     = "B2C_CALLBACK_URL"
	KeyB2CQueueTimeoutURL = "B2C_QUEUE_TIMEOUT_URL"

	KeyReversalURL             = "REVERSAL_URL"
	KeyReversalCallbackURL     = "REVERSAL_CALLBACK_URL"
	KeyReversalQueueTimeoutURL = "REVERSAL_QUEUE_TIMEOUT_URL"

	KeyTransactionStatusURL             = "TRANSACTION_STATUS_URL"
	KeyTransactionStatusCallbackURL     = "TRANSACTION_STATUS_CALLBACK_URL"
	KeyTransactionStatusQueueTimeoutURL = "TRANSACTION_STATUS_QUEUE_TIMEOUT_URL"

	KeyC2BRegisterURL = "C2B_REGISTER_URL"

	KeyDBDSN         = "DB_DSN"
	KeyRedisAddr     = "REDIS_ADDR"
	KeyRedisPassword = "REDIS_PASSWORD"
	KeyRedisChannel  = "REDIS_CHANNEL_PREFIX"
)

const sandbox = "https://sandbox.safaricom.co.ke"

var defaults = map[string]any{
	KeyAppEnv:   "sandbox",
	KeyAppPort:  "8080",
	KeyLogLevel: "info",

	KeyCallbackToken: "",

	KeyOAuthURL: sandbox + "/oauth/v1/generate?grant_type=client_credentials",
	KeyTimeout:  "2s",
	KeyTimezone: "Africa/Nairobi",

	KeySecurityCredential: "your-security-credential",

	KeySTKPushInitiationURL:  sandbox + "/mpesa/stkpush/v1/processrequest",
	KeySTKPushStatusQueryURL: sandbox + "/mpesa/stkpushquery/v1/query",
	KeySTKPushCallbackURL:    "https://mydomain.ext/stk-push-callback-url",

	KeyB2CURL:             sandbox + "/mpesa/b2c/v1/paymentrequest",
	KeyB2CCallbackURL:     "https://mydomain.ext/b2c-callback-url",
	KeyB2CQueueTimeoutURL: "https://mydomain.ext/b2c-queue-timeout-url",

	KeyReversalURL:             sandbox + "/mpesa/reversal/v1/request",
	KeyReversalCallbackURL:     "https://mydomain.ext/reversal-callback-url",
	KeyReversalQueueTimeoutURL: "https://mydomain.ext/reversal-queue-timeout-url",

	KeyTransactionStatusURL:             sandbox + "/mpesa/transactionstatus/v1/query",
	KeyTransactionStatusCallbackURL:     "https://mydomain.ext/transaction-status-callback-url",
	KeyTransactionStatusQueueTimeoutURL: "https://mydomain.ext/transaction-status-queue-timeout-url",

	KeyC2BRegisterURL: sandbox + "/mpesa/c2b/v1/registerurl",

	KeyDBDSN:         "",
	KeyRedisAddr:     "",
	KeyRedisPassword: "",
	KeyRedisChannel:  "daraja:callbacks",
}

type AppCfg struct {
	Env      string
	Port     string
	LogLevel string
	// CallbackToken, when set, must accompany every callback delivery
	CallbackToken string
}

// Endpoint groups the provider URL of one operation with the URLs the
// provider reports back to.
type Endpoint struct {
	URL             string
	CallbackURL     string
	QueueTimeoutURL string
}

type DarajaCfg struct {
	OAuthURL           string
	Timeout            time.Duration
	Timezone           string
	SecurityCredential string

	STKPush           Endpoint
	STKPushQuery      Endpoint
	B2C               Endpoint
	Reversal          Endpoint
	TransactionStatus Endpoint
	C2BRegister       Endpoint
}

type DBCfg struct{ DSN string }

type RedisCfg struct{ Addr, Password, ChannelPrefix string }

type Cfg struct {
	App    AppCfg
	Daraja DarajaCfg
	DB     DBCfg
	Redis  RedisCfg
}

// Load reads .env (when present) and the process environment.
func Load() (Cfg, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Cfg{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	return build(v)
}

// Default returns the documented defaults without reading the environment.
func Default() Cfg {
	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	cfg, err := build(v)
	if err != nil {
		panic(err) // defaults are static
	}
	return cfg
}

func build(v *viper.Viper) (Cfg, error) {
	cfg := Cfg{
		App: AppCfg{
			Env:      v.GetString(KeyAppEnv),
			Port:     v.GetString(KeyAppPort),
			LogLevel: strings.ToLower(v.GetString(KeyLogLevel)),

			CallbackToken: v.GetString(KeyCallbackToken),
		},
		Daraja: DarajaCfg{
			OAuthURL:           v.GetString(KeyOAuthURL),
			Timeout:            v.GetDuration(KeyTimeout),
			Timezone:           v.GetString(KeyTimezone),
			SecurityCredential: v.GetString(KeySecurityCredential),
			STKPush: Endpoint{
				URL:         v.GetString(KeySTKPushInitiationURL),
				CallbackURL: v.GetString(KeySTKPushCallbackURL),
			},
			STKPushQuery: Endpoint{URL: v.GetString(KeySTKPushStatusQueryURL)},
			B2C: Endpoint{
				URL:             v.GetString(KeyB2CURL),
				CallbackURL:     v.GetString(KeyB2CCallbackURL),
				QueueTimeoutURL: v.GetString(KeyB2CQueueTimeoutURL),
			},
			Reversal: Endpoint{
				URL:             v.GetString(KeyReversalURL),
				CallbackURL:     v.GetString(KeyReversalCallbackURL),
				QueueTimeoutURL: v.GetString(KeyReversalQueueTimeoutURL),
			},
			TransactionStatus: Endpoint{
				URL:             v.GetString(KeyTransactionStatusURL),
				CallbackURL:     v.GetString(KeyTransactionStatusCallbackURL),
				QueueTimeoutURL: v.GetString(KeyTransactionStatusQueueTimeoutURL),
			},
			C2BRegister: Endpoint{URL: v.GetString(KeyC2BRegisterURL)},
		},
		DB: DBCfg{DSN: v.GetString(KeyDBDSN)},
		Redis: RedisCfg{
			Addr:          v.GetString(KeyRedisAddr),
			Password:      v.GetString(KeyRedisPassword),
			ChannelPrefix: v.GetString(KeyRedisChannel),
		},
	}

	// Fail fast on settings every operation depends on
	if cfg.Daraja.Timeout <= 0 {
		return Cfg{}, fmt.Errorf("%s must be a positive duration", KeyTimeout)
	}
	if _, err := time.LoadLocation(cfg.Daraja.Timezone); err != nil {
		return Cfg{}, fmt.Errorf("%s: %w", KeyTimezone, err)
	}
	return cfg, nil
}
