// Package localserver serves the Dew API on a Unix domain socket.
//
// The socket carries the same HTTP handler as the TCP endpoint, without
// TLS. Access is controlled by file permissions: the socket is created
// with mode 0600, so only the server's user can connect. dew-cli reaches
// it with a unix:// server address.
package localserver
