// Package service provides domain services for Dew.
//
// TodoService validates requests, fills defaults for new todos and
// delegates to a TodoRepository. It defines the storage interface so the
// engine can be swapped out in tests.
package service
