// Package cli implements the murphy command-line interface.
//
// Commands:
//
//	murphy validate -f scenario.yaml       check scenario files against the schema
//	murphy check -f scenario.yaml --path /api/users
//	                                       show which rule a request would hit
//	murphy proxy --target URL -f FILE      run a fault-injecting HTTP proxy
//	murphy profiles [show NAME]            list or print the built-in profiles
//	murphy version                         print build information
//
// Every command accepts --json for machine-readable output and --log-level /
// --log-format to control diagnostics on stderr.
package cli
