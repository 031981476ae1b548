// Package connection is the dew-cli HTTP client.
//
// HTTPClient handles transport concerns: base URL, TLS trust and the error
// envelope. Client layers the typed todo and admin calls on top.
package connection
