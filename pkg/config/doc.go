// Package config loads environment-based settings into tagged structs using
// caarlos0/env. A .env file in the working directory is read once, if present,
// before the first Load; explicit files can be loaded with LoadEnv.
//
//	var cfg dispatch.Config
//	if err := config.Load(&cfg); err != nil { ... }
//
// Each struct type is parsed once per process and cached.
package config
