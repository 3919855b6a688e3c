// Package agent contains the dispatcher that routes conversational messages
// to wallet capabilities. It resolves the capability by name or simile,
// applies the capability's applicability predicate, records every invocation
// in the journal, and raises alerts for vendor-side failures.
package agent
