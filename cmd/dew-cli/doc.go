// Package main provides the entry point for dew-cli.
//
// dew-cli talks to a dew-server over its HTTP API:
//
//	dew-cli list
//	dew-cli add buy milk
//	dew-cli done 6f1c2a9e
//	dew-cli title 6f1c2a9e buy oat milk
//	dew-cli clear
//	dew-cli watch --interval 2s
//	dew-cli -o json system status
//
// The server defaults to http://127.0.0.1:7890; set --server or
// DEW_SERVER to point elsewhere. Run "dew-cli shell" for an interactive
// session.
package main
