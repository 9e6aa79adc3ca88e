// Package config loads service configuration from a YAML file, an optional
// .env file, and environment variables.
//
// It uses Viper for file parsing and godotenv for .env files. Environment
// variables carrying the service prefix override file values using
// underscore-separated paths, e.g. SESSIONSTREAM_SERVER_PORT=9090 sets
// server.port.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("sessionstream", &cfg, config.WithConfigFile(path))
package config
