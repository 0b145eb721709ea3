// Package config provides configuration loading for Mercator Themis from
// YAML files with environment variable overrides. It provides a type-safe
// configuration structure, defaulting, and validation.
//
// Loading:
//
//	cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// Environment variables use the THEMIS_SECTION_FIELD convention and take
// precedence over file values, for example:
//
//   - THEMIS_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - THEMIS_PROVIDER_API_KEY overrides provider.api_key
//   - THEMIS_STORE_PATH overrides store.path
//
// API keys should never be committed to configuration files; set them
// only through the environment.
package config
