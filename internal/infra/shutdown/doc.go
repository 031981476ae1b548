// Package shutdown runs dew-server's teardown.
//
// A Handler waits for SIGINT, SIGTERM or an explicit Trigger, then runs the
// registered hooks in reverse registration order under a shared timeout.
// dew-server registers the storage engine first and the listeners last, so
// requests drain before the engine writes its final snapshot.
package shutdown
