// Package domain contains the pure data types of the Forager engine:
// execution state, offers, criteria, tool envelopes and the output
// envelope returned to callers.
//
// The package has no dependencies on the runtime or any adapter. Types
// here are safe to construct in tests and to serialize across process
// boundaries.
package domain
