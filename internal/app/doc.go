// Package app loads the TOML configuration and wires application
// dependencies for the CLI.
//
// It builds the concrete stores, security contexts and services from a
// Config, exposing them via the Wire struct for commands to use.
package app
