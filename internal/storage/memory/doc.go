// Package memory provides in-memory storage for Dew.
//
// The Store keeps every todo in a single map guarded by one mutex.
// Every operation, read or write, holds the mutex for its full duration,
// so mutations are linearized in lock-acquisition order and readers never
// observe a partially applied operation.
//
// Records are cloned on the way in and on the way out; callers never hold
// references into the map.
//
// The Store does not know about generations. Callers that need change
// notification bump their own counter after a successful mutation.
package memory
