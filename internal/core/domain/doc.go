// Package domain defines the core domain models for Dew.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling. This package contains:
//
//   - Todo: a todo record and its status enumeration
//   - Errors: domain-specific error definitions with stable codes
//
// Transports map error codes onto their own status space; see
// DomainError for the code layout.
package domain
