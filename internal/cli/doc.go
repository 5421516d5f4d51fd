// Package cli implements the fedipage command tree.
//
// The root command loads the configuration file, applies --instance and
// --token, and sets up logging with a trace ID before any subcommand runs.
// Subcommands:
//
//	following, followers   page through an account list (table, JSON, YAML or TUI)
//	instance               server information and version compatibility
//	config                 init, set, get, list and validate the config file
//	cache                  stats, clear and prune the local record store
//
// List commands drive a viewmodel.ListViewModel: headless output loads pages
// with viewmodel.LoadAllUntil, while --interactive hands the model to the
// terminal UI.
package cli
