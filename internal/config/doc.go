// Package config provides configuration management for Wiki Race.
//
// Configuration is assembled from three sources, in increasing precedence:
//   - Built-in defaults (NewConfig)
//   - An optional .wikirace YAML file found in the current or home directory
//   - CLI flags
//
// Design decision: Configuration is passed through the application via
// dependency injection rather than global state. Validation happens once,
// after CLI parsing, so failures surface before any network call is made.
package config
