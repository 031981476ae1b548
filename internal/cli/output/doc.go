// Package output renders dew-cli results as a table, JSON or YAML.
//
// Tables are the default. JSON and YAML keep the field names of the
// HTTP API so output can be piped into other tools.
package output
