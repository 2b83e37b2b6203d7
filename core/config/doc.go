// Package config loads typed configuration from environment variables.
//
// A .env file in the working directory is applied once on first use, then
// github.com/caarlos0/env parses variables into the struct tags of the target
// type. Each type is parsed once and cached for the process lifetime:
//
//	type EmailConfig struct {
//		Provider string `env:"EMAIL_PROVIDER" envDefault:"dev"`
//		APIKey   string `env:"RESEND_API_KEY"`
//	}
//
//	var cfg EmailConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// MustLoad panics instead of returning an error and is meant for main packages.
package config
