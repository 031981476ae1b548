// Package config loads the optional dew-cli settings file.
//
// The file holds defaults for the global flags:
//
//	server: https://dew.example:7890
//	output: yaml
//	ca_file: /etc/dew/ca.pem
//	timeout: 10s
//
// Flags and DEW_* environment variables win over the file.
package config
