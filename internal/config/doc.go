// Package config holds the coordinator configuration and its loading rules.
//
// Settings are layered, later layers winning:
//
//  1. Default()
//  2. a YAML file named by --config or ODDEVEN_CONFIG
//  3. ODDEVEN_* environment variables
//  4. command-line options
//
// Every validation failure wraps ErrInvalidArgs and is reported before any
// worker is started or contacted.
package config
