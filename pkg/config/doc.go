// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for parsing into structs. Every configuration
// type is parsed once per process and cached; ForceReload and ResetCache
// exist for tests.
//
//	var cfg taskstore.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// Load reads ./.env, if present, before the first parse. LoadEnv loads other
// files explicitly; values already in the process environment take
// precedence over file values.
//
// Parse failures wrap ErrParsingConfig and can be checked with errors.Is.
package config
