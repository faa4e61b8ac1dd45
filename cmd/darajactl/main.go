package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"daraja/internal/config"
	"daraja/internal/provider/mpesa"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

// Merchant credentials never live in config files shared with the receiver
const (
	envConsumerKey    = "CONSUMER_KEY"
	envConsumerSecret = "CONSUMER_SECRET"
	envShortcode      = "SHORTCODE"
	envPasskey        = "PASSKEY"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	level, err := zerolog.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	cred := mpesa.Credentials{
		ConsumerKey:    os.Getenv(envConsumerKey),
		ConsumerSecret: os.Getenv(envConsumerSecret),
		Shortcode:      os.Getenv(envShortcode),
		Passkey:        os.Getenv(envPasskey),
	}
	client, err := mpesa.New(cfg.Daraja, cred, mpesa.WithLogger(logger))
	if err != nil {
		log.Fatal().Err(err).Msg("client")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, client, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "darajactl:", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `usage: darajactl <command> [flags]

commands:
  token         fetch an OAuth access token
  stk           initiate an STK push payment
  stk-status    query an STK push
  b2c           initiate a business to customer payment
  reverse       reverse a transaction
  status        query a transaction status
  register-c2b  register C2B confirmation and validation URLs
  ops           list supported operations

credentials are read from CONSUMER_KEY, CONSUMER_SECRET, SHORTCODE and PASSKEY`)
}
