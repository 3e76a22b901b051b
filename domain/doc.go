// Package domain provides the core types and interfaces of the wetwire mixin
// CLI.
//
// It includes:
//
// - Result and Error types for unified operation returns
// - Domain interface with optional capability interfaces (ImporterDomain,
// ListerDomain, GrapherDomain, WatcherDomain)
// - Operation interfaces (Builder, Linter, Initializer, Validator, etc.) with options structs
// - Context type for passing execution context and configuration to operations
// - wetwire.yaml loading with environment overrides, and cobra CLI generation
package domain
