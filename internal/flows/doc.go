// Package flows holds the pure orchestration behind the Engine's gate and
// guard operations.
//
// Each Run* function takes a typed dependency struct and returns a classified
// result; the root package maps failure kinds to its public errors, metrics
// and audit events. Flows are generic over the host's principal and role
// types so they never import the root package.
//
// # What this package must NOT do
//
//   - Hold state between calls.
//   - Perform I/O except through its dependency structs.
package flows
